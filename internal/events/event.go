// Package events provides a typed pub/sub bus and JSONL analytics logging
// for session lifecycle events.
package events

import "time"

// Event is the interface all bus events implement.
type Event interface {
	EventKind() string
	EventTime() time.Time
	EventSession() int
}

// Event kind constants.
const (
	KindCommandSubmitted   = "command_submitted"
	KindStreamOpened       = "stream_opened"
	KindCommandCompleted   = "command_completed"
	KindIntegrationTimeout = "integration_timeout"
	KindRunFailed          = "run_failed"
	KindSessionCreated     = "session_created"
	KindSessionRemoved     = "session_removed"
)

// Base provides the common fields for all events.
type Base struct {
	Kind      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Session   int       `json:"session"`
}

func (b Base) EventKind() string    { return b.Kind }
func (b Base) EventTime() time.Time { return b.Timestamp }
func (b Base) EventSession() int    { return b.Session }

func base(kind string, session int) Base {
	return Base{Kind: kind, Timestamp: time.Now().UTC(), Session: session}
}

// CommandSubmitted is emitted when a session accepts a command.
type CommandSubmitted struct {
	Base
	Command string `json:"command"`
	TaskID  string `json:"task_id,omitempty"`
}

// NewCommandSubmitted creates a CommandSubmitted event.
func NewCommandSubmitted(session int, command, taskID string) CommandSubmitted {
	return CommandSubmitted{Base: base(KindCommandSubmitted, session), Command: command, TaskID: taskID}
}

// StreamOpened is emitted when a live output stream is attached.
type StreamOpened struct {
	Base
}

// NewStreamOpened creates a StreamOpened event.
func NewStreamOpened(session int) StreamOpened {
	return StreamOpened{Base: base(KindStreamOpened, session)}
}

// CommandCompleted is emitted when shell execution of a command ends.
type CommandCompleted struct {
	Base
	ExitCode int  `json:"exit_code"`
	Queued   bool `json:"queued"` // true if the process still held unread output
}

// NewCommandCompleted creates a CommandCompleted event.
func NewCommandCompleted(session, exitCode int, queued bool) CommandCompleted {
	return CommandCompleted{Base: base(KindCommandCompleted, session), ExitCode: exitCode, Queued: queued}
}

// IntegrationTimeout is emitted when shell integration never became ready
// within the bound. Diagnostic, not fatal.
type IntegrationTimeout struct {
	Base
	Timeout string `json:"timeout"`
}

// NewIntegrationTimeout creates an IntegrationTimeout event.
func NewIntegrationTimeout(session int, timeout time.Duration) IntegrationTimeout {
	return IntegrationTimeout{Base: base(KindIntegrationTimeout, session), Timeout: timeout.String()}
}

// RunFailed is emitted when a process reports an execution error.
type RunFailed struct {
	Base
	Error string `json:"error"`
}

// NewRunFailed creates a RunFailed event.
func NewRunFailed(session int, err error) RunFailed {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return RunFailed{Base: base(KindRunFailed, session), Error: msg}
}

// SessionCreated is emitted when the registry creates a session.
type SessionCreated struct {
	Base
	TaskID string `json:"task_id,omitempty"`
}

// NewSessionCreated creates a SessionCreated event.
func NewSessionCreated(session int, taskID string) SessionCreated {
	return SessionCreated{Base: base(KindSessionCreated, session), TaskID: taskID}
}

// SessionRemoved is emitted when the registry releases a session.
type SessionRemoved struct {
	Base
}

// NewSessionRemoved creates a SessionRemoved event.
func NewSessionRemoved(session int) SessionRemoved {
	return SessionRemoved{Base: base(KindSessionRemoved, session)}
}
