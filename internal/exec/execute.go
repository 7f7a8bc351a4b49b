// Package exec implements the bounded subprocess executor (§4.4) behind
// smart_exec and the indexing/model helper invocations. Commands run via
// an absolute path and an explicit argv — Run never wraps them in a shell
// itself (smart_exec passes /bin/sh -c as that path and argv explicitly) —
// and are escalated from SIGTERM to SIGKILL if they outlive their deadline.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"devgateway/internal/gwerr"
)

// maxStderrBytes bounds the captured stderr tail (§4.4).
const maxStderrBytes = 4 * 1024

// killGrace is how long the process gets to exit after SIGTERM before
// SIGKILL is sent (§4.4).
const killGrace = 1 * time.Second

// Request describes a single bounded subprocess invocation.
type Request struct {
	Path       string // absolute path to the binary; resolved by the caller
	Args       []string
	WorkingDir string
	Env        []string // KEY=VALUE entries; the child's entire environment (nothing is inherited)
	Timeout    time.Duration
}

// Result is the outcome of a Run call.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes req.Path with req.Args as an explicit argv (Run adds no shell
// of its own). On timeout the process receives SIGTERM, then SIGKILL after
// killGrace if it hasn't exited.
func Run(ctx context.Context, req Request) (Result, error) {
	if req.Path == "" {
		return Result{}, gwerr.New(gwerr.InvalidInput, "executable path is required")
	}
	if !isAbs(req.Path) {
		return Result{}, gwerr.New(gwerr.InvalidInput, "executable path must be absolute: "+req.Path)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, req.Path, req.Args...)
	cmd.Dir = req.WorkingDir
	cmd.Env = append([]string{}, req.Env...)
	// Prevent CommandContext's default Kill-on-cancel; we drive the
	// SIGTERM->SIGKILL escalation ourselves below.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = killGrace

	var stdout bytes.Buffer
	stderr := newBoundedBuffer(maxStderrBytes)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	err := cmd.Run()

	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return result, gwerr.Wrap(gwerr.Timeout, fmt.Sprintf("%s timed out after %s", req.Path, timeout), err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderrText := strings.TrimSpace(result.Stderr)
			if stderrText == "" {
				stderrText = "no stderr output"
			}
			return result, gwerr.Wrap(gwerr.SubprocessFailed, fmt.Sprintf("%s exited %d: %s", req.Path, result.ExitCode, stderrText), err)
		}
		return result, gwerr.Wrap(gwerr.SubprocessFailed, "failed to start "+req.Path, err)
	}

	return result, nil
}

func isAbs(p string) bool {
	return len(p) > 0 && (p[0] == '/' || (len(p) > 1 && p[1] == ':'))
}

// boundedBuffer caps the number of bytes retained, keeping only the tail —
// a runaway process's stderr cannot grow unboundedly in memory (§4.4).
type boundedBuffer struct {
	limit int
	buf   bytes.Buffer
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.buf.Write(p)
	if b.buf.Len() > b.limit {
		trimmed := b.buf.Bytes()[b.buf.Len()-b.limit:]
		b.buf = *bytes.NewBuffer(append([]byte(nil), trimmed...))
	}
	return n, nil
}

func (b *boundedBuffer) String() string { return b.buf.String() }
