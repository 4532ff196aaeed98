// Package runner executes external collaborators and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	ierrors "github.com/five82/icecale/internal/errors"
	"github.com/five82/icecale/internal/logging"
)

// Outcome is the exit status and combined stdout/stderr of one invocation.
type Outcome struct {
	ExitCode int
	Output   string
}

// Success reports whether the process exited with status zero.
func (o Outcome) Success() bool {
	return o.ExitCode == 0
}

// FirstLine returns the first non-empty line of the captured output.
func (o Outcome) FirstLine() string {
	for _, line := range strings.Split(o.Output, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return ""
}

// Runner executes a program synchronously.
//
// A nonzero exit status is reported through Outcome with a nil error.
// An error is returned only when the process could not be launched or was
// cancelled before it finished.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Outcome, error)
}

// DefaultWaitDelay is how long Run keeps reading output after the process
// exits or is killed.
const DefaultWaitDelay = 5 * time.Second

// ExecRunner runs programs with os/exec.
type ExecRunner struct {
	// Timeout bounds each invocation. Zero means no limit.
	Timeout   time.Duration
	// WaitDelay bounds the wait for output pipes held open by descendants
	// of the process. Zero waits until they close.
	WaitDelay time.Duration
	Logger    *logging.Logger
}

// NewExecRunner creates an ExecRunner.
func NewExecRunner(timeout time.Duration, logger *logging.Logger) *ExecRunner {
	return &ExecRunner{
		Timeout:   timeout,
		WaitDelay: DefaultWaitDelay,
		Logger:    logging.OrGlobal(logger).WithComponent("runner"),
	}
}

// Run executes name with args and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Outcome, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	log := logging.OrGlobal(r.Logger)
	log.Debug("executing", "cmd", name, "args", args)
	start := time.Now()

	// Sharing one writer keeps stdout and stderr interleaved in emission order.
	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	cmd.WaitDelay = r.WaitDelay

	err := cmd.Run()
	out := Outcome{Output: buf.String()}

	if err == nil {
		log.Debug("finished", "cmd", name, "exit_code", 0, "elapsed", time.Since(start))
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		log.Warn("cancelled", "cmd", name, "error", ctxErr)
		return out, ierrors.NewCancelledError(ctxErr)
	}

	if errors.Is(err, exec.ErrWaitDelay) {
		out.ExitCode = -1
		log.Warn("output not closed after exit", "cmd", name, "wait_delay", r.WaitDelay)
		return out, ierrors.NewCommandWaitError(name, err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		if out.ExitCode == 0 {
			out.ExitCode = -1
		}
		log.Debug("finished", "cmd", name, "exit_code", out.ExitCode, "elapsed", time.Since(start))
		return out, nil
	}

	log.Warn("launch failed", "cmd", name, "error", err)
	return Outcome{ExitCode: -1}, ierrors.NewCommandStartError(name, err)
}
