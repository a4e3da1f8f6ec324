// Package proc implements the session Process contract on top of a tmux
// pane. Commands are wrapped with a unique completion marker, dispatched via
// send-keys, and their output is piped to a file that is tailed into a live
// stream. The marker carries the exit code back out of the pane.
package proc

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Dicklesworthstone/shellpool/internal/session"
	"github.com/Dicklesworthstone/shellpool/internal/stream"
	"github.com/Dicklesworthstone/shellpool/internal/tmux"
)

// watchInterval backstops the stream's update signal while scanning for the
// completion marker.
const watchInterval = 250 * time.Millisecond

// Proc runs one command in a tmux pane.
type Proc struct {
	sess    *session.Session
	client  *tmux.Client
	target  string
	command string
	marker  marker
	poll    time.Duration

	mu              sync.Mutex
	st              *stream.Stream
	tail            *stream.Tail
	pipePath        string
	exit            *session.ExitDetails
	retrieved       int
	integrationLost bool

	events     chan session.Event
	finishOnce sync.Once
}

// FactoryOption configures the processes a Factory produces.
type FactoryOption func(*Proc)

// WithPollInterval sets the poll backstop interval used while tailing the
// pane's pipe file. Non-positive values keep the stream default.
func WithPollInterval(d time.Duration) FactoryOption {
	return func(p *Proc) {
		if d > 0 {
			p.poll = d
		}
	}
}

// Factory returns a session.ProcessFactory producing processes bound to the
// given pane target.
func Factory(client *tmux.Client, target string, opts ...FactoryOption) session.ProcessFactory {
	return func(s *session.Session, command string) session.Process {
		p := &Proc{
			sess:    s,
			client:  client,
			target:  target,
			command: command,
			marker:  newMarker(),
			poll:    stream.DefaultPollInterval,
			events:  make(chan session.Event, 1),
		}
		for _, opt := range opts {
			opt(p)
		}
		return p
	}
}

// Command returns the command text this process was created for.
func (p *Proc) Command() string { return p.command }

// Events is the one-shot continuation/failure channel consumed by the session.
func (p *Proc) Events() <-chan session.Event { return p.events }

// Run starts the command in the pane. Called by the session once shell
// integration readiness has been settled.
func (p *Proc) Run(command string) {
	if err := p.start(command); err != nil {
		p.report(session.Event{Err: err})
	}
}

func (p *Proc) start(command string) error {
	f, err := os.CreateTemp("", "shellpool-*.out")
	if err != nil {
		return fmt.Errorf("creating pipe file: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := p.client.PipePane(p.target, path); err != nil {
		os.Remove(path)
		return fmt.Errorf("piping pane %s: %w", p.target, err)
	}

	st := stream.New()
	tail, err := stream.FollowInterval(path, st, p.poll)
	if err != nil {
		p.client.UnpipePane(p.target)
		os.Remove(path)
		return fmt.Errorf("tailing pipe file: %w", err)
	}

	p.mu.Lock()
	p.st = st
	p.tail = tail
	p.pipePath = path
	p.mu.Unlock()

	if err := p.sess.SetActiveStream(st); err != nil {
		p.teardown()
		return err
	}

	if err := p.client.SendKeys(p.target, p.marker.wrap(command), true); err != nil {
		p.teardown()
		return fmt.Errorf("dispatching command: %w", err)
	}

	go p.watch(st)
	return nil
}

// watch scans the stream for the completion marker and finishes the run.
func (p *Proc) watch(st *stream.Stream) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		if code, ok := p.marker.findExit(st.Text()); ok {
			p.finish(code)
			return
		}
		select {
		case <-st.Updates():
		case <-st.Done():
			// Stream ended without a marker: report what we know.
			if code, ok := p.marker.findExit(st.Text()); ok {
				p.finish(code)
			} else {
				p.report(session.Event{Err: fmt.Errorf("stream closed before command completed")})
			}
			return
		case <-ticker.C:
		}
	}
}

// finish tears down the pipe, reports completion to the session, and
// continues the run. Runs at most once.
func (p *Proc) finish(code int) {
	p.finishOnce.Do(func() {
		p.teardown()
		p.sess.ShellExecutionComplete(session.ExitDetails{Code: code})
		p.report(session.Event{})
	})
}

func (p *Proc) teardown() {
	p.client.UnpipePane(p.target)

	p.mu.Lock()
	tail, st, path := p.tail, p.st, p.pipePath
	p.mu.Unlock()

	if tail != nil {
		tail.Stop()
	}
	if st != nil {
		st.Close()
	}
	if path != "" {
		os.Remove(path)
	}
}

func (p *Proc) report(ev session.Event) {
	select {
	case p.events <- ev:
	default:
	}
}

// Notify receives session-originated notifications.
func (p *Proc) Notify(n session.Notification) {
	switch n := n.(type) {
	case session.StreamAvailable:
		// The stream is our own; nothing to record.
	case session.ExecutionComplete:
		p.mu.Lock()
		exit := n.Exit
		p.exit = &exit
		p.mu.Unlock()
	case session.NoShellIntegration:
		// Degraded mode: dispatch the bare command. Without the marker there
		// is no completion detection, so the run settles only through the
		// caller's own deadline.
		p.mu.Lock()
		p.integrationLost = true
		p.mu.Unlock()
		p.client.SendKeys(p.target, p.command, true)
	}
}

// IntegrationLost reports whether the process fell back to markerless
// dispatch after the shell integration timeout.
func (p *Proc) IntegrationLost() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.integrationLost
}

// Exit returns the recorded exit details, or nil while running.
func (p *Proc) Exit() *session.ExitDetails {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exit == nil {
		return nil
	}
	exit := *p.exit
	return &exit
}

// output returns the command's cleaned output so far.
func (p *Proc) output() string {
	p.mu.Lock()
	st := p.st
	p.mu.Unlock()
	if st == nil {
		return ""
	}
	return p.marker.clean(st.Text())
}

// HasUnretrievedOutput reports whether output has not yet been consumed.
func (p *Proc) HasUnretrievedOutput() bool {
	out := p.output()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.retrieved < len(out)
}

// UnretrievedOutput returns the unread output and marks it consumed.
func (p *Proc) UnretrievedOutput() string {
	out := p.output()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.retrieved >= len(out) {
		return ""
	}
	unread := out[p.retrieved:]
	p.retrieved = len(out)
	return unread
}
