package session

import "github.com/Dicklesworthstone/shellpool/internal/stream"

// Notification is a session-originated message delivered to a Process. The
// set is closed: processes switch on the concrete types below.
type Notification interface {
	notification()
}

// StreamAvailable reports that a live output stream has been attached to the
// session for this process's command.
type StreamAvailable struct {
	SessionID int
	Stream    *stream.Stream
}

// ExecutionComplete reports that the shell finished executing the command.
// It is always delivered after StreamAvailable for the same process, when a
// stream was attached at all.
type ExecutionComplete struct {
	SessionID int
	Exit      ExitDetails
}

// NoShellIntegration reports that shell integration never became ready
// within the bound. Streaming and structured completion cannot be relied on
// for this command; the process decides how to degrade.
type NoShellIntegration struct{}

func (StreamAvailable) notification()    {}
func (ExecutionComplete) notification()  {}
func (NoShellIntegration) notification() {}

// ExitDetails describes how a command's shell execution ended.
type ExitDetails struct {
	Code   int
	Signal string
}

// Event is a process-originated report consumed one-shot by the session. A
// nil Err continues the run to successful settlement; a non-nil Err fails it.
type Event struct {
	Err error
}
