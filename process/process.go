// Package process implements a child-process controller: it spawns an
// external command, wires its standard streams per the caller's ipc
// choices, and coordinates Poll/Wait/Communicate/signal delivery
// against it.
package process

import (
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/geb0598/coj-go/errkind"
	"github.com/geb0598/coj-go/internal/config"
	"github.com/geb0598/coj-go/internal/logging"
	"github.com/geb0598/coj-go/ipc"
	"github.com/geb0598/coj-go/observer"
	"github.com/geb0598/coj-go/pipe"
)

// Process is a pinned, non-copyable controller: it is always used
// through a pointer. Communicate's worker goroutines hold references
// into it, so copying a Process would split its shared state between
// the copies.
type Process struct {
	mu    sync.Mutex
	runID uuid.UUID
	log   zerolog.Logger
	cfg   config.Defaults

	argv []string
	cmd  *exec.Cmd
	pid  int

	state    lifecycleState
	exitCode *int
	usage    *syscall.Rusage

	stdinOpt  ipc.Source
	stdoutOpt ipc.Destination
	stderrOpt ipc.Destination

	stdinCell  *observer.Cell[*pipe.Endpoint]
	stdoutCell *observer.Cell[*pipe.Endpoint]
	stderrCell *observer.Cell[*pipe.Endpoint]
}

// New tokenizes command, validates the redirection options, spawns
// the child, and returns a live Process. It raises errkind.InvalidArg
// for an empty command or an illegal IPC option, and errkind.Errno if
// the underlying spawn syscalls fail.
func New(command string, opts ...Option) (*Process, error) {
	argv, kerr := tokenize(command)
	if !errkind.IsOk(kerr) {
		return nil, kerr
	}

	options := defaultOptions()
	for _, o := range opts {
		o(&options)
	}
	if kerr := options.Stdin.Validate(); !errkind.IsOk(kerr) {
		return nil, kerr
	}
	if kerr := options.Stdout.Validate(false); !errkind.IsOk(kerr) {
		return nil, kerr
	}
	if kerr := options.Stderr.Validate(true); !errkind.IsOk(kerr) {
		return nil, kerr
	}

	p := &Process{
		runID:     uuid.New(),
		argv:      argv,
		state:     stateAlive{},
		stdinOpt:  options.Stdin,
		stdoutOpt: options.Stdout,
		stderrOpt: options.Stderr,
		cfg:       config.Load(),
	}
	p.log = logging.For("process").With().
		Str("run_id", p.runID.String()).
		Str("command", p.Args()).
		Logger()

	if kerr := spawn(p); !errkind.IsOk(kerr) {
		return nil, kerr
	}
	return p, nil
}

// Args reconstructs a space-joined rendering of the tokenized argv.
func (p *Process) Args() string { return strings.Join(p.argv, " ") }

// PID returns the child's process ID, valid from spawn until reaped.
func (p *Process) PID() int { return p.pid }

// ReturnCode reports the exit disposition if the child has been
// reaped: a non-negative value for normal exit, negative for a
// terminating signal.
func (p *Process) ReturnCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exitCode == nil {
		return 0, false
	}
	return *p.exitCode, true
}

// Usage reports the resource-usage record captured at reap time.
func (p *Process) Usage() (*syscall.Rusage, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.usage == nil {
		return nil, false
	}
	return p.usage, true
}

// StdinHandle returns a weak observer over the parent-side stdin pipe.
// It reports expired once Process has closed that end (e.g. after
// Communicate finishes). When the stdin option isn't ipc.Pipe, the
// handle stays live until Close but holds a nil endpoint.
func (p *Process) StdinHandle() observer.Handle[*pipe.Endpoint] {
	return handleOf(p.stdinCell)
}

// StdoutHandle returns a weak observer over the parent-side stdout pipe.
func (p *Process) StdoutHandle() observer.Handle[*pipe.Endpoint] {
	return handleOf(p.stdoutCell)
}

// StderrHandle returns a weak observer over the parent-side stderr pipe.
func (p *Process) StderrHandle() observer.Handle[*pipe.Endpoint] {
	return handleOf(p.stderrCell)
}

func handleOf(c *observer.Cell[*pipe.Endpoint]) observer.Handle[*pipe.Endpoint] {
	if c == nil {
		return observer.Handle[*pipe.Endpoint]{}
	}
	return c.Handle()
}

// tryReap performs one non-blocking WNOHANG reap attempt.
func (p *Process) tryReap() (exitCode int, usage *syscall.Rusage, reaped bool, kerr *errkind.Error) {
	var ws syscall.WaitStatus
	var ru syscall.Rusage
	wpid, err := syscall.Wait4(p.pid, &ws, syscall.WNOHANG, &ru)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok {
			return 0, nil, false, errkind.NewErrno(errno)
		}
		return 0, nil, false, errkind.NewFatal("wait4 on pid %d failed: %s", p.pid, err.Error())
	}
	if wpid == 0 {
		return 0, nil, false, nil
	}
	switch {
	case ws.Exited():
		return ws.ExitStatus(), &ru, true, nil
	case ws.Signaled():
		return -int(ws.Signal()), &ru, true, nil
	default:
		return 0, nil, true, errkind.NewFatal(
			"unrecognized wait status %v for pid %d", ws, p.pid)
	}
}
