package tmux

import (
	"context"
	"time"
)

// ReadyOption is the pane-scoped user option the shell hook sets once an
// interactive prompt is accepting input.
const ReadyOption = "@shellpool_ready"

// DefaultReadyPollInterval is how often readiness is re-checked.
const DefaultReadyPollInterval = 100 * time.Millisecond

// IntegrationHook returns the shell command that marks a pane's shell
// integration as ready. Sessions created by shellpool send it as the first
// command; it only executes once the shell is actually reading input, which
// is exactly the readiness signal.
func IntegrationHook(target string) string {
	return "tmux set-option -p -t " + ShellQuote(target) + " " + ReadyOption + " 1"
}

// Integration implements session.Integration by polling the pane's ready
// option.
type Integration struct {
	client *Client
	target string
	poll   time.Duration
}

// NewIntegration creates a readiness poller for the given pane target.
func NewIntegration(client *Client, target string) *Integration {
	return &Integration{client: client, target: target, poll: DefaultReadyPollInterval}
}

// WaitReady blocks until the pane reports shell integration, or ctx is done.
func (i *Integration) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(i.poll)
	defer ticker.Stop()

	for {
		if i.ready(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (i *Integration) ready(ctx context.Context) bool {
	out, err := i.client.RunContext(ctx, "show-options", "-p", "-t", i.target, "-v", ReadyOption)
	return err == nil && out == "1"
}

// MarkReady installs the integration marker by typing the hook command into
// the pane. The marker appears only after the shell executes it, so a busy
// or wedged shell never reports ready.
func MarkReady(client *Client, target string) error {
	return client.SendKeys(target, " "+IntegrationHook(target), true)
}
