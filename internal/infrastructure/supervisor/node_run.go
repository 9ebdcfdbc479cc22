// Package supervisor implements the runner/supervisor (component F):
// spawning layered processes as OS children, redirecting their output to
// component C's log providers, and polling for completion with
// timeout-bounded heartbeats. Grounded on the teacher's layered executor
// (internal/infrastructure/engine/executor.go) for the concurrency shape
// and internal/plugins/internalexec/internalexec.go for output capture.
package supervisor

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"syscall"
	"time"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
	"github.com/grochmal/harmonia/internal/domain/uri"
	"github.com/grochmal/harmonia/internal/infrastructure/runlog"
)

// HeartbeatTimeout bounds how long Heartbeat blocks waiting on the child
// before reporting StillRunning, per §4.6.
const HeartbeatTimeout = 100 * time.Millisecond

// StillRunning is the heartbeat sentinel returned while the child has not
// yet exited.
const StillRunning = -1

// Handle pairs a spawned child with its log provider, kept alive for the
// duration of supervision.
type Handle struct {
	logger *runlog.LogProvider
	cmd    *exec.Cmd
	done   chan error
	exited bool
	code   int
}

// RunNode spawns a child process whose executable and arguments are
// node.Cmd followed by args; stdout and stderr are merged and redirected
// to the log provider that logFactory builds for node.Name.
func RunNode(node harmonia.Node, logFactory runlog.LogProviderFactory, version string, args []string) (*Handle, error) {
	logProvider, err := logFactory.Build(version, node.Name, false)
	if err != nil {
		return nil, err
	}

	fullArgs := append(append([]string(nil), node.Cmd[1:]...), args...)
	for i, a := range fullArgs {
		fullArgs[i] = uri.ExpandVersion(a, version)
	}

	cmd := exec.Command(node.Cmd[0], fullArgs...)

	var captureBuf bytes.Buffer
	writer := &logLineWriter{provider: logProvider, tee: io.MultiWriter(&captureBuf)}
	cmd.Stdout = writer
	cmd.Stderr = writer

	if err := cmd.Start(); err != nil {
		_ = logProvider.Close()
		return nil, harmonia.NewExecutionError("failed to start node process", err)
	}

	handle := &Handle{logger: logProvider, cmd: cmd, done: make(chan error, 1)}
	go func() {
		handle.done <- cmd.Wait()
	}()
	return handle, nil
}

// Heartbeat non-blockingly polls the child: it waits up to HeartbeatTimeout.
// If the child has exited, its exit code is returned; otherwise
// StillRunning is returned. Heartbeat never itself fails.
func (h *Handle) Heartbeat() int {
	if h.exited {
		return h.code
	}
	select {
	case err := <-h.done:
		h.exited = true
		h.code = exitCodeFromError(err)
		return h.code
	case <-time.After(HeartbeatTimeout):
		return StillRunning
	}
}

// Wait blocks until the child exits or ctx is cancelled, returning the
// exit code. On cancellation it terminates the child (SIGTERM-equivalent)
// and returns after the child exits.
func (h *Handle) Wait(ctx context.Context) int {
	if h.exited {
		return h.code
	}
	select {
	case err := <-h.done:
		h.exited = true
		h.code = exitCodeFromError(err)
	case <-ctx.Done():
		if err := h.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			_ = h.cmd.Process.Kill()
		}
		err := <-h.done
		h.exited = true
		h.code = exitCodeFromError(err)
	}
	return h.code
}

// Release closes the handle's log provider. Idempotent.
func (h *Handle) Release() error {
	return h.logger.Close()
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// logLineWriter forwards each write to the log provider as a timestamped
// message and tees the raw bytes to an in-memory buffer for diagnostics,
// mirroring the teacher's internalexec.RunStreaming capture pattern.
type logLineWriter struct {
	provider *runlog.LogProvider
	tee      io.Writer
}

func (w *logLineWriter) Write(p []byte) (int, error) {
	w.provider.Msg(string(bytes.TrimRight(p, "\n")))
	return w.tee.Write(p)
}
