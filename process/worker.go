package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// ErrWorkerExited is returned by calls on a worker whose process is gone.
var ErrWorkerExited = errors.New("process: worker exited")

// Worker is a long-lived subprocess speaking a line protocol: each request
// line written to its stdin is answered by exactly one line on its stdout.
// Calls are serialized. A call abandoned by its context kills the worker,
// since the next response line could no longer be matched to its request.
type Worker struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	grace time.Duration

	lines chan []byte
	done  chan struct{}
	stop  chan struct{}

	stderr  *tailBuffer
	exitErr error

	callMu    sync.Mutex
	closeOnce sync.Once
}

// StartWorker starts cmd as a worker. It runs until Close or until it exits
// on its own; cmd.Stdin is ignored.
func StartWorker(cmd Command) (*Worker, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}
	grace := cmd.GracePeriod
	if grace == 0 {
		grace = defaultGracePeriod
	}

	c := exec.Command(cmd.Binary, cmd.Args...) //nolint:gosec // the model command line is configurable
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.WaitDelay = grace

	stdin, err := c.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("process: stdin pipe: %w", err)
	}
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("process: stdout pipe: %w", err)
	}
	stderr := &tailBuffer{max: 4 * stderrTail}
	c.Stderr = stderr

	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("process: start %s: %w", cmd.Binary, err)
	}

	w := &Worker{
		cmd:    c,
		stdin:  stdin,
		grace:  grace,
		lines:  make(chan []byte),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
		stderr: stderr,
	}
	go w.readLoop(bufio.NewReader(stdout))
	return w, nil
}

func (w *Worker) readLoop(r *bufio.Reader) {
	for {
		line, err := r.ReadBytes('\n')
		if err == nil {
			select {
			case w.lines <- bytes.TrimRight(line, "\r\n"):
			case <-w.stop:
			}
			continue
		}
		break
	}
	w.exitErr = w.cmd.Wait()
	close(w.done)
	close(w.lines)
}

// Next waits for the next line the worker writes without sending anything,
// such as a readiness line printed after startup.
func (w *Worker) Next(ctx context.Context) ([]byte, error) {
	w.callMu.Lock()
	defer w.callMu.Unlock()
	return w.receive(ctx)
}

// Call writes one request line and waits for the response line. line must
// not contain a newline.
func (w *Worker) Call(ctx context.Context, line []byte) ([]byte, error) {
	if bytes.IndexByte(line, '\n') >= 0 {
		return nil, fmt.Errorf("process: request contains a newline")
	}
	w.callMu.Lock()
	defer w.callMu.Unlock()

	if w.Exited() {
		return nil, w.exitError()
	}
	if _, err := w.stdin.Write(append(bytes.Clone(line), '\n')); err != nil {
		w.kill()
		return nil, w.exitError()
	}
	return w.receive(ctx)
}

func (w *Worker) receive(ctx context.Context) ([]byte, error) {
	select {
	case line, ok := <-w.lines:
		if !ok {
			return nil, w.exitError()
		}
		return line, nil
	case <-ctx.Done():
		w.kill()
		return nil, fmt.Errorf("process: worker killed by context: %w", ctx.Err())
	}
}

// Exited reports whether the worker process has terminated.
func (w *Worker) Exited() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// ExitCode is the exit status once the worker has exited, -1 before that
// or when it was killed by a signal.
func (w *Worker) ExitCode() int {
	if !w.Exited() {
		return -1
	}
	return w.cmd.ProcessState.ExitCode()
}

// StderrTail returns at most the last n bytes of the worker's stderr.
func (w *Worker) StderrTail(n int) string {
	return (&Result{Stderr: w.stderr.Bytes()}).StderrTail(n)
}

// Close ends the worker: stdin is closed so a well-behaved worker exits on
// its own, then the process group gets SIGTERM and finally SIGKILL, each
// after the grace period.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		close(w.stop)
		_ = w.stdin.Close()
	})
	for _, sig := range []syscall.Signal{syscall.SIGTERM, syscall.SIGKILL} {
		select {
		case <-w.done:
			return nil
		case <-time.After(w.grace):
			_ = syscall.Kill(-w.cmd.Process.Pid, sig)
		}
	}
	<-w.done
	return nil
}

func (w *Worker) kill() {
	w.closeOnce.Do(func() {
		close(w.stop)
		_ = w.stdin.Close()
	})
	_ = syscall.Kill(-w.cmd.Process.Pid, syscall.SIGKILL)
	<-w.done
}

func (w *Worker) exitError() error {
	<-w.done
	msg := fmt.Sprintf("exit code %d", w.ExitCode())
	if w.exitErr == nil {
		msg = "exited"
	}
	if tail := w.StderrTail(stderrTail); tail != "" {
		return fmt.Errorf("%w: %s: %s", ErrWorkerExited, msg, tail)
	}
	return fmt.Errorf("%w: %s", ErrWorkerExited, msg)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf)
}
