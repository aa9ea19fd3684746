// Package runner spawns one native process, waits for it and captures its
// output streams.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/deixis/procbridge/internal/procutil"
)

// pipeGrace bounds how long Run keeps reading after the process exits. A
// shell that backgrounds a child (sh -c "app &") leaves the child holding
// the output pipes; once the grace period passes the pipes are closed and
// Run returns with the shell's own exit code.
const pipeGrace = 250 * time.Millisecond

// Runner executes commands synchronously.
//
// The zero value runs with no time limit and unlimited capture: a process
// that never exits blocks Run until ctx is cancelled.
type Runner struct {
	Dir       string        // working directory; empty inherits the caller's
	Timeout   time.Duration // zero means no limit
	MaxOutput int           // bytes kept per stream; zero means unlimited
	Logger    *zap.Logger   // debug traces only; nil is silent
}

// Run executes argv. The first element is resolved via PATH.
//
// A process that starts and exits nonzero is not an error: the exit code is
// in the Result. An error means the process never ran (binary missing,
// permission denied, cancelled before start).
func (r *Runner) Run(ctx context.Context, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty argv")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.WaitDelay = pipeGrace
	procutil.Prepare(cmd)

	var stdout, stderr bytes.Buffer
	outW := &limitWriter{buf: &stdout, limit: r.MaxOutput}
	errW := &limitWriter{buf: &stderr, limit: r.MaxOutput}
	cmd.Stdout = outW
	cmd.Stderr = errW

	r.logger().Debug("spawning", zap.Strings("argv", argv))
	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case errors.As(runErr, &exitErr):
		exitCode = exitErr.ExitCode()
	case errors.Is(runErr, exec.ErrWaitDelay) && cmd.ProcessState != nil:
		// The process exited; only a background child still held the pipes.
		exitCode = cmd.ProcessState.ExitCode()
	default:
		return nil, errors.Wrapf(runErr, "executing %s", argv[0])
	}

	truncated := outW.dropped || errW.dropped

	r.logger().Debug("exited",
		zap.String("program", argv[0]),
		zap.Int("exit_code", exitCode),
		zap.Duration("elapsed", elapsed),
	)

	return &Result{
		ExitCode:  exitCode,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Truncated: truncated,
		Elapsed:   elapsed,
	}, nil
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// limitWriter writes up to limit bytes to buf, then discards the rest and
// sets dropped. A limit of zero keeps everything.
type limitWriter struct {
	buf     *bytes.Buffer
	limit   int
	dropped bool
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if w.limit <= 0 {
		return w.buf.Write(p)
	}
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		w.dropped = w.dropped || len(p) > 0
		return len(p), nil
	}
	if len(p) > remaining {
		w.dropped = true
		// Report all bytes consumed so io.Copy does not fail with a short write.
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
