// Package runner executes host commands with a timeout and an output cap,
// capturing stdout and stderr separately.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTimeout   = 60 * time.Second
	DefaultMaxOutput = 1 << 20
)

// ErrTimeout is wrapped into the error returned when a command outlives the
// runner timeout.
var ErrTimeout = errors.New("command timed out")

// Runner executes commands. The zero value uses the defaults above.
type Runner struct {
	Dir       string
	Timeout   time.Duration
	MaxOutput int // bytes
}

// New creates a Runner with the given limits, substituting defaults for
// non-positive values.
func New(timeout time.Duration, maxOutput int) *Runner {
	return &Runner{Timeout: timeout, MaxOutput: maxOutput}
}

// Run executes argv. The first element is the binary name (resolved via
// PATH), the rest are its arguments. A non-zero exit is not an error: it is
// reported in Result.ExitCode. An error means the process could not be
// started, could not be waited on, or timed out.
func (r *Runner) Run(ctx context.Context, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxOutput := r.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	// Don't let a grandchild holding the pipes keep Wait blocked forever.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitWriter{buf: &stdout, limit: maxOutput}
	cmd.Stderr = &limitWriter{buf: &stderr, limit: maxOutput}

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("executing %s: %w after %v", argv[0], ErrTimeout, timeout)
		}
		return nil, fmt.Errorf("executing %s: %w", argv[0], err)
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// Binary not found or other exec error.
			return nil, fmt.Errorf("executing %s: %w", argv[0], runErr)
		}
	}

	return &Result{
		RunID:     uuid.NewString(),
		ExitCode:  exitCode,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Truncated: stdout.Len() >= maxOutput || stderr.Len() >= maxOutput,
		Duration:  elapsed,
	}, nil
}

// limitWriter writes up to limit bytes to buf, then silently discards the rest.
type limitWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		// Report all bytes as consumed to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
