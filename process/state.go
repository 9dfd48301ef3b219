package process

import "syscall"

// lifecycleState represents Process's internal state as one of a
// small set of concrete implementations rather than a branching status
// field. Process holds a single lifecycleState value under a mutex and
// replaces it with whatever the state transitions to.
//
// Only two states exist, because a Process spawns its child at
// construction time rather than through a separate Start call:
// stateAlive, before the child has been reaped, and stateReaped,
// after.
type lifecycleState interface {
	// poll attempts a non-blocking reap. Returns the (possibly new)
	// state and the exit code if a reap occurred.
	poll(p *Process) (lifecycleState, *int)
	// sendSignal delivers sig to the child, or is a silent no-op if
	// the child has already been reaped.
	sendSignal(p *Process, sig syscall.Signal) error
	// reaped reports whether this state represents a reaped child.
	reaped() bool
}

// stateAlive is the state before the child has been reaped.
type stateAlive struct{}

func (stateAlive) reaped() bool { return false }

func (stateAlive) poll(p *Process) (lifecycleState, *int) {
	code, usage, reaped, err := p.tryReap()
	if err != nil || !reaped {
		return stateAlive{}, nil
	}
	p.exitCode = &code
	p.usage = usage
	return stateReaped{}, &code
}

func (stateAlive) sendSignal(p *Process, sig syscall.Signal) error {
	return p.cmd.Process.Signal(sig)
}

// stateReaped is the state once the child's exit status has been
// consumed. Signals become no-ops.
type stateReaped struct{}

func (stateReaped) reaped() bool { return true }

func (stateReaped) poll(p *Process) (lifecycleState, *int) {
	return stateReaped{}, p.exitCode
}

func (stateReaped) sendSignal(*Process, syscall.Signal) error {
	return nil
}
