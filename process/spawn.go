package process

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"github.com/geb0598/coj-go/errkind"
	"github.com/geb0598/coj-go/ipc"
	"github.com/geb0598/coj-go/observer"
)

// closer is satisfied by both file.Endpoint and *os.File, letting
// spawn's cleanup pass treat "things to close after Start" uniformly.
type closer interface {
	Close() error
}

// spawn builds the child's file wiring, starts it via os/exec (Go's
// fork+exec+dup2 equivalent of POSIX spawn), and then closes every
// parent-side handle the child alone needs. Leaving one of those open
// in the parent prevents EOF from ever propagating on the matching
// pipe and deadlocks Communicate.
func spawn(p *Process) *errkind.Error {
	if kerr := p.stdinOpt.Resolve(); !errkind.IsOk(kerr) {
		return kerr
	}
	if kerr := p.stdoutOpt.Resolve(); !errkind.IsOk(kerr) {
		return kerr
	}
	if kerr := p.stderrOpt.Resolve(); !errkind.IsOk(kerr) {
		return kerr
	}

	cmd := exec.Command(p.argv[0], p.argv[1:]...)

	var toCloseInParent []closer

	// stdin
	switch p.stdinOpt.Option {
	case ipc.None:
		cmd.Stdin = os.Stdin
	default:
		if f := p.stdinOpt.ChildFile(); f != nil {
			cmd.Stdin = f.File()
			toCloseInParent = append(toCloseInParent, f)
		} else if cp := p.stdinOpt.ChildPipe(); cp != nil {
			childFile := cp.ToFile("child-stdin")
			cmd.Stdin = childFile
			toCloseInParent = append(toCloseInParent, childFile)
		}
	}

	// stdout
	var stdoutFile *os.File
	switch p.stdoutOpt.Option {
	case ipc.None:
		stdoutFile = os.Stdout
	default:
		if f := p.stdoutOpt.ChildFile(); f != nil {
			stdoutFile = f.File()
			toCloseInParent = append(toCloseInParent, f)
		} else if cp := p.stdoutOpt.ChildPipe(); cp != nil {
			childFile := cp.ToFile("child-stdout")
			stdoutFile = childFile
			toCloseInParent = append(toCloseInParent, childFile)
		}
	}
	cmd.Stdout = stdoutFile

	// stderr, including the STDOUT-merge special case
	switch p.stderrOpt.Option {
	case ipc.None:
		cmd.Stderr = os.Stderr
	case ipc.Stdout: // dup2(STDOUT_FILENO, STDERR_FILENO) equivalent
		cmd.Stderr = stdoutFile
	default:
		if f := p.stderrOpt.ChildFile(); f != nil {
			cmd.Stderr = f.File()
			toCloseInParent = append(toCloseInParent, f)
		} else if cp := p.stderrOpt.ChildPipe(); cp != nil {
			childFile := cp.ToFile("child-stderr")
			cmd.Stderr = childFile
			toCloseInParent = append(toCloseInParent, childFile)
		}
	}

	if err := cmd.Start(); err != nil {
		return errnoFromStartError(err)
	}

	for _, c := range toCloseInParent {
		if err := c.Close(); err != nil {
			p.log.Debug().Err(err).Msg("spawn: closing child-only fd after start")
		}
	}

	p.cmd = cmd
	p.pid = cmd.Process.Pid
	p.stdinCell = observer.NewCell(p.stdinOpt.ParentPipe())
	p.stdoutCell = observer.NewCell(p.stdoutOpt.ParentPipe())
	p.stderrCell = observer.NewCell(p.stderrOpt.ParentPipe())
	p.log = p.log.With().Int("pid", p.pid).Logger()
	p.log.Debug().Msg("spawn: child started")
	return errkind.NewOk()
}

// errnoFromStartError classifies exec.Cmd.Start failures. A missing
// executable fails lookup inside exec.LookPath, which reports an
// *exec.Error; when that error carries no errno (exec.ErrNotFound) it is
// mapped to ENOENT, so callers see errkind.Errno rather than a generic
// invalid-argument error. Any other failure that wraps an errno (such as
// the *os.PathError from a failed fork/exec) surfaces that errno.
func errnoFromStartError(err error) *errkind.Error {
	if execErr, ok := err.(*exec.Error); ok {
		if errno, ok := execErr.Err.(syscall.Errno); ok {
			return errkind.NewErrno(errno)
		}
		return errkind.NewErrno(syscall.ENOENT)
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errkind.NewErrno(errno)
	}
	return errkind.NewFatal("spawn failed: %s", err.Error())
}
