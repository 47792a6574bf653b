package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const defaultGracePeriod = 5 * time.Second

// Command is one subprocess invocation. Env entries (KEY=value) are added
// to the parent environment; with none the child inherits it unchanged.
type Command struct {
	Binary string
	Args   []string
	Dir    string
	Env    []string
	Stdin  io.Reader
	// GracePeriod separates SIGTERM from SIGKILL on cancellation (default 5s).
	GracePeriod time.Duration
}

// stderrTail bounds the stderr excerpt carried in errors.
const stderrTail = 512

// Run executes a subprocess and waits for it to complete.
// If ctx is canceled, the process group gets SIGTERM, then SIGKILL after
// GracePeriod. A non-zero exit is an error; the Result is still returned.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = defaultGracePeriod
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // the model command line is configurable
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	// Own process group so the interpreter and its children die together.
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return result, fmt.Errorf("process: killed by context: %w", ctx.Err())
	}
	if tail := result.StderrTail(stderrTail); tail != "" {
		return result, fmt.Errorf("process: exit code %d: %w: %s", result.ExitCode, err, tail)
	}
	return result, fmt.Errorf("process: exit code %d: %w", result.ExitCode, err)
}

func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	return append(os.Environ(), extra...)
}
