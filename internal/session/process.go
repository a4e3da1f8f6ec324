package session

import "context"

// Process is the contract between a session and one running command. A
// session owns at most one active Process at a time; completed processes
// with unread output survive in the session's queue until drained.
type Process interface {
	// Run starts the command. The session calls it exactly once, after
	// shell-integration readiness has been settled.
	Run(command string)

	// Command returns the command text this process was created for.
	Command() string

	// HasUnretrievedOutput reports whether the command produced output that
	// has not yet been consumed.
	HasUnretrievedOutput() bool

	// UnretrievedOutput returns the unread output and marks it consumed.
	UnretrievedOutput() string

	// Notify delivers a session-originated notification.
	Notify(Notification)

	// Events is the channel on which the process reports continuation or
	// failure of the run. The session consumes at most one event.
	Events() <-chan Event
}

// ProcessFactory builds the Process for one submitted command. The session
// passes itself so the implementation can report stream attachment and
// execution completion back to it.
type ProcessFactory func(s *Session, command string) Process

// Integration reports shell-integration readiness for the underlying
// terminal. Implementations typically poll the terminal multiplexer for a
// marker set by the shell's rc hook.
type Integration interface {
	// WaitReady blocks until shell integration is ready or ctx is done,
	// returning ctx's error in the latter case.
	WaitReady(ctx context.Context) error
}
