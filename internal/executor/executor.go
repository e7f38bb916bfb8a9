package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/TravisRivera14/DriverAid/internal/logging"
)

var log = logging.L("executor")

// MaxOutputSize is the maximum size of stdout/stderr to capture
const MaxOutputSize = 1024 * 1024 // 1MB

// ExecFunc runs a command to completion and returns its captured output and exit
// code. A non-zero exit is not an error; err is set only when the process could
// not be run, in which case exitCode is -1.
type ExecFunc func(ctx context.Context, name string, args []string) (stdout, stderr string, exitCode int, err error)

// Runner executes external tools with size-limited output capture. The core
// imposes no timeout; a command runs until it exits or ctx is cancelled.
type Runner struct {
	// ExtraEnv is appended to the inherited environment.
	ExtraEnv []string
}

// New creates a Runner.
func New(extraEnv ...string) *Runner {
	return &Runner{ExtraEnv: extraEnv}
}

// Exec adapts the runner to ExecFunc.
func (r *Runner) Exec() ExecFunc {
	return r.Run
}

// Run executes name with args and waits for it to exit.
func (r *Runner) Run(ctx context.Context, name string, args []string) (string, string, int, error) {
	startTime := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{buf: &stdout, limit: MaxOutputSize}
	cmd.Stderr = &limitedWriter{buf: &stderr, limit: MaxOutputSize}

	if len(r.ExtraEnv) > 0 {
		cmd.Env = append(os.Environ(), r.ExtraEnv...)
	}

	log.Debug("running command", "command", name)
	err := cmd.Run()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			log.Info("command completed", "command", name, "exitCode", code, "duration", time.Since(startTime))
			return stdout.String(), stderr.String(), code, nil
		}
		log.Error("command failed to run", "command", name, "error", err)
		return stdout.String(), stderr.String(), -1, err
	}

	log.Info("command completed successfully", "command", name, "duration", time.Since(startTime))
	return stdout.String(), stderr.String(), 0, nil
}

// PowerShellArgs builds the argument list used to run script non-interactively
// with the execution policy bypassed.
func PowerShellArgs(script string) []string {
	return []string{"-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", script}
}

// limitedWriter wraps a buffer with a size limit
type limitedWriter struct {
	buf     *bytes.Buffer
	limit   int
	written int
}

func (w *limitedWriter) Write(p []byte) (n int, err error) {
	total := len(p)
	if w.written >= w.limit {
		// Discard additional data but don't error
		return total, nil
	}

	remaining := w.limit - w.written
	if len(p) > remaining {
		p = p[:remaining]
	}

	n, err = w.buf.Write(p)
	w.written += n
	return total, err
}
