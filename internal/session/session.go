// Package session implements the terminal/process lifecycle coordinator: it
// binds a logical terminal to at most one in-flight command process, tracks
// the live output stream, detects completion, and queues finished processes
// whose output has not yet been read.
//
// Three independent signals race here: shell-integration readiness, stream
// attachment, and the external execution-complete notification. The session
// reconciles them under one lock so that no output is silently dropped and
// no terminal is left in an ambiguous busy state.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Dicklesworthstone/shellpool/internal/events"
	"github.com/Dicklesworthstone/shellpool/internal/stream"
)

// DefaultIntegrationTimeout bounds the wait for shell-integration readiness.
// Integration is a best-effort terminal feature: exceeding the bound degrades
// to markerless execution instead of failing the command.
const DefaultIntegrationTimeout = 4 * time.Second

// ErrNoActiveProcess reports a stream assignment with no process to notify.
// This is a caller sequencing bug, not a runtime condition: do not swallow it.
var ErrNoActiveProcess = errors.New("session: no process to notify")

// ErrBusy reports a command submitted while the previous one has not settled.
var ErrBusy = errors.New("session: busy with previous command")

// Session coordinates one logical terminal.
type Session struct {
	id      int
	factory ProcessFactory

	integration        Integration
	integrationTimeout time.Duration
	bus                *events.Bus

	mu           sync.Mutex
	taskID       string
	busy         bool
	running      bool
	active       Process
	stream       *stream.Stream
	streamClosed bool
	completed    []Process // most recently completed first
}

// Option configures a Session.
type Option func(*Session)

// WithTaskID correlates the session with a higher-level task. Opaque to the
// session itself.
func WithTaskID(id string) Option {
	return func(s *Session) { s.taskID = id }
}

// WithIntegrationTimeout overrides DefaultIntegrationTimeout.
func WithIntegrationTimeout(d time.Duration) Option {
	return func(s *Session) { s.integrationTimeout = d }
}

// WithBus publishes lifecycle events to the given bus.
func WithBus(bus *events.Bus) Option {
	return func(s *Session) { s.bus = bus }
}

// New creates a session for the given terminal id. integration settles the
// readiness wait in RunCommand; factory builds the process for each
// submitted command.
func New(id int, integration Integration, factory ProcessFactory, opts ...Option) *Session {
	s := &Session{
		id:                 id,
		factory:            factory,
		integration:        integration,
		integrationTimeout: DefaultIntegrationTimeout,
		streamClosed:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the stable terminal identity.
func (s *Session) ID() int { return s.id }

// TaskID returns the correlation id of the owning task, if any.
func (s *Session) TaskID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskID
}

// SetTaskID updates the task correlation id.
func (s *Session) SetTaskID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskID = id
}

// Busy reports whether a submitted command has not yet settled. Busy outlives
// Running: it stays true through finalization after the stream has closed.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Running reports whether an active output stream is open.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stream returns the current output stream, or nil when none is attached.
// The stream is borrowed from the active process, never owned.
func (s *Session) Stream() *stream.Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

// StreamClosed reports whether no stream is currently attached.
func (s *Session) StreamClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamClosed
}

// SetActiveStream attaches a live output stream, or clears it when st is
// nil. Attaching requires an active process — the stream exists only because
// a command is executing — and notifies it with StreamAvailable. Clearing
// sends no notification.
func (s *Session) SetActiveStream(st *stream.Stream) error {
	s.mu.Lock()
	if st == nil {
		s.stream = nil
		s.streamClosed = true
		s.running = false
		s.mu.Unlock()
		return nil
	}

	if s.active == nil {
		s.mu.Unlock()
		return ErrNoActiveProcess
	}
	s.stream = st
	s.streamClosed = false
	s.running = true
	proc := s.active
	s.mu.Unlock()

	proc.Notify(StreamAvailable{SessionID: s.id, Stream: st})
	s.publish(events.NewStreamOpened(s.id))
	return nil
}

// ShellExecutionComplete records the end of the active command's execution.
// The active process is detached exactly here; if it still holds unread
// output it moves to the front of the completed queue, otherwise it is
// dropped. Without an active process the call only clears the running state.
func (s *Session) ShellExecutionComplete(exit ExitDetails) {
	s.mu.Lock()
	s.running = false
	s.stream = nil
	s.streamClosed = true

	proc := s.active
	if proc == nil {
		s.mu.Unlock()
		return
	}
	queued := proc.HasUnretrievedOutput()
	if queued {
		s.completed = append([]Process{proc}, s.completed...)
	}
	s.active = nil
	s.mu.Unlock()

	proc.Notify(ExecutionComplete{SessionID: s.id, Exit: exit})
	s.publish(events.NewCommandCompleted(s.id, exit.Code, queued))
}

// LastCommand returns the active command's text if one exists, else the most
// recently completed command still holding output, else "".
func (s *Session) LastCommand() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return s.active.Command()
	}
	if len(s.completed) > 0 {
		return s.completed[0].Command()
	}
	return ""
}

// CleanCompletedProcesses drops queued processes whose output has been fully
// retrieved since they completed. Relative order of survivors is preserved.
func (s *Session) CleanCompletedProcesses() {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.completed[:0]
	for _, p := range s.completed {
		if p.HasUnretrievedOutput() {
			kept = append(kept, p)
		}
	}
	s.completed = kept
}

// ProcessesWithOutput cleans the queue and returns a snapshot of completed
// processes that still hold unread output, most recent first. Mutating the
// returned slice does not affect the session.
func (s *Session) ProcessesWithOutput() []Process {
	s.CleanCompletedProcesses()

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Process, len(s.completed))
	copy(out, s.completed)
	return out
}

// RunCommand submits a command. The session is busy from this moment until
// the returned run settles via the process's Continue or error report.
//
// The readiness wait runs concurrently: once shell integration is ready the
// process is started; if the bound expires the process is notified with
// NoShellIntegration instead and the run is left to settle (or not) on the
// process's own terms. ctx bounds only the readiness wait, not execution.
func (s *Session) RunCommand(ctx context.Context, command string) (*Run, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	proc := s.factory(s, command)
	s.active = proc
	s.mu.Unlock()

	s.publish(events.NewCommandSubmitted(s.id, command, s.TaskID()))

	run := &Run{proc: proc, done: make(chan struct{})}
	go s.consumeEvents(run, proc)
	go s.startWhenReady(ctx, proc, command)
	return run, nil
}

// consumeEvents is the one-shot consumer of the process's event channel.
func (s *Session) consumeEvents(run *Run, proc Process) {
	ev, ok := <-proc.Events()
	if ok && ev.Err != nil {
		s.publish(events.NewRunFailed(s.id, ev.Err))
		s.settle(run, ev.Err)
		return
	}
	s.settle(run, nil)
}

// settle clears busy and resolves the run handle. Both the continue and the
// error paths land here, so busy can never go stale.
func (s *Session) settle(run *Run, err error) {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()

	run.err = err
	close(run.done)
}

func (s *Session) startWhenReady(ctx context.Context, proc Process, command string) {
	wctx, cancel := context.WithTimeout(ctx, s.integrationTimeout)
	defer cancel()

	if err := s.integration.WaitReady(wctx); err != nil {
		// Integration is best-effort: signal the degradation and move on
		// rather than failing the whole interaction.
		s.publish(events.NewIntegrationTimeout(s.id, s.integrationTimeout))
		proc.Notify(NoShellIntegration{})
		return
	}
	proc.Run(command)
}

func (s *Session) publish(e events.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// Run is the handle returned by RunCommand: an awaitable settlement of the
// command lifecycle plus access to the live process. The awaitable and the
// process's notification surface are deliberately separate values.
type Run struct {
	proc Process
	done chan struct{}
	err  error
}

// Process returns the live process for this run.
func (r *Run) Process() Process { return r.proc }

// Done is closed when the run settles. Read Err afterwards.
func (r *Run) Done() <-chan struct{} { return r.done }

// Err returns the settlement error. Only valid after Done is closed.
func (r *Run) Err() error { return r.err }

// Wait blocks until the run settles or ctx expires.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
