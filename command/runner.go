// Package command wraps subprocess execution behind a small injectable
// surface so callers can be tested without spawning real binaries.
package command

import (
	"context"
	"time"

	"github.com/grovetools/codex-wakatime/errors"
)

const (
	// DefaultTimeout bounds a command when the caller does not set one.
	DefaultTimeout = 30 * time.Second

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

// Runner executes commands with a bounded timeout and captured output.
type Runner struct {
	executor Executor
	timeout  time.Duration
}

// NewRunner creates a Runner backed by the given Executor. Timeouts outside
// (0, MaxTimeout] are clamped.
func NewRunner(executor Executor, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	return &Runner{executor: executor, timeout: timeout}
}

// Timeout returns the effective per-command timeout.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run executes the command and returns its combined output. The command is
// killed when the runner's timeout elapses.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := r.executor.CommandContext(runCtx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil && runCtx.Err() == context.DeadlineExceeded {
		return out, errors.CommandTimeout(name, r.timeout)
	}
	return out, err
}
