package process

import (
	"context"
	"syscall"
	"time"

	"github.com/geb0598/coj-go/errkind"
	"github.com/geb0598/coj-go/observer"
	"github.com/geb0598/coj-go/pipe"
)

// Poll performs a single non-blocking reap attempt and returns nil if
// the child is still running.
func (p *Process) Poll() (*int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	newState, code := p.state.poll(p)
	p.state = newState
	if code == nil {
		return nil, nil
	}
	return code, nil
}

// Wait blocks, polling every cfg.PollInterval, until the child is
// reaped or ctx is done. If ctx carries a deadline that elapses first,
// Wait raises errkind.Timeout without signaling the child; escalating
// to a signal on timeout is the caller's decision (Close does it
// automatically).
func (p *Process) Wait(ctx context.Context) (int, error) {
	if code, ok := p.ReturnCode(); ok {
		return code, nil
	}
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return 0, errkind.NewTimeout(errkind.TimeoutInfo{
				Command:  p.Args(),
				Deadline: deadlineOf(ctx),
			})
		case <-ticker.C:
			code, err := p.Poll()
			if err != nil {
				return 0, err
			}
			if code != nil {
				return *code, nil
			}
		}
	}
}

func deadlineOf(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return time.Now()
}

// SendSignal delivers sig to the child. A no-op if already reaped.
func (p *Process) SendSignal(sig syscall.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.sendSignal(p, sig)
}

// Terminate sends SIGTERM.
func (p *Process) Terminate() error { return p.SendSignal(syscall.SIGTERM) }

// Kill sends SIGKILL.
func (p *Process) Kill() error { return p.SendSignal(syscall.SIGKILL) }

// Close is the terminate-then-kill destructor: if the child is still
// alive, send SIGTERM, wait up to cfg.TerminationGrace, and escalate
// to SIGKILL if it hasn't exited by then. Close is an explicit call
// the caller (or a defer) must make, not a finalizer; any error along
// the way is logged rather than panicked or returned, so a cleanup
// path never blows up on an already-dead child.
func (p *Process) Close() error {
	if _, ok := p.ReturnCode(); ok {
		p.closeParentPipes()
		return nil
	}
	if err := p.Terminate(); err != nil {
		p.log.Error().Err(err).Msg("close: SIGTERM delivery failed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.TerminationGrace)
	defer cancel()
	if _, err := p.Wait(ctx); err != nil {
		if err := p.Kill(); err != nil {
			p.log.Error().Err(err).Msg("close: SIGKILL delivery failed")
		}
		if _, err := p.Wait(context.Background()); err != nil {
			p.log.Error().Err(err).Msg("close: wait after SIGKILL failed")
		}
	}
	p.closeParentPipes()
	return nil
}

func (p *Process) closeParentPipes() {
	for _, cell := range []*observer.Cell[*pipe.Endpoint]{p.stdinCell, p.stdoutCell, p.stderrCell} {
		clearPipeCell(cell)
	}
}

// clearPipeCell closes the endpoint a cell currently holds (if any and
// still live) and marks the cell expired, so a weak Handle reports
// itself expired the instant its side is closed rather than only once
// Process.Close eventually runs.
func clearPipeCell(cell *observer.Cell[*pipe.Endpoint]) {
	if cell == nil {
		return
	}
	if ep, ok := cell.Handle().Get(); ok && ep != nil {
		_ = ep.Close()
	}
	cell.Clear()
}

// closeAndClear closes an endpoint the caller already holds a live
// reference to, then expires its cell. Preferred over clearPipeCell
// whenever the caller already has ep in hand, since it avoids a second
// Handle lookup racing a concurrent Clear.
func closeAndClear(cell *observer.Cell[*pipe.Endpoint], ep *pipe.Endpoint) {
	_ = ep.Close()
	if cell != nil {
		cell.Clear()
	}
}
