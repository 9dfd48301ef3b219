package process

import (
	"context"
	"sync"

	"github.com/geb0598/coj-go/errkind"
)

// Result is what Communicate returns on normal completion.
type Result struct {
	BytesWritten int
	Stdout       []byte
	Stderr       []byte
}

// Communicate feeds input to the child's stdin (if a stdin pipe
// exists), concurrently drains stdout and stderr (if their pipes
// exist), and waits for the child to exit. Running all three flows
// concurrently avoids the classic deadlock where the child blocks
// writing more than one pipe-buffer of output while the parent is
// still blocked writing its own input.
//
// If ctx is done before the child exits, Communicate cancels the
// in-flight workers, joins them, and returns errkind.Timeout carrying
// whatever bytes_written/stdout/stderr had accumulated so far. A
// Timeout outcome does not imply the child is dead; the caller (or
// Close) must still Kill/Terminate and Wait to clean up.
func (p *Process) Communicate(ctx context.Context, input []byte) (Result, error) {
	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	var bytesWritten int
	var stdoutBuf, stderrBuf []byte

	if stdinEP, ok := p.StdinHandle().Get(); ok && stdinEP != nil {
		if len(input) == 0 {
			closeAndClear(p.stdinCell, stdinEP)
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, kerr := stdinEP.WriteAll(workerCtx, input, 0)
				bytesWritten = n
				if !errkind.IsOk(kerr) {
					p.log.Debug().Err(kerr).Msg("communicate: stdin worker terminated")
				}
				closeAndClear(p.stdinCell, stdinEP)
			}()
		}
	}

	if stdoutEP, ok := p.StdoutHandle().Get(); ok && stdoutEP != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf, kerr := stdoutEP.ReadAll(workerCtx)
			stdoutBuf = buf.Bytes()
			if !errkind.IsOk(kerr) {
				p.log.Debug().Err(kerr).Msg("communicate: stdout worker terminated")
			}
			closeAndClear(p.stdoutCell, stdoutEP)
		}()
	}

	if stderrEP, ok := p.StderrHandle().Get(); ok && stderrEP != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf, kerr := stderrEP.ReadAll(workerCtx)
			stderrBuf = buf.Bytes()
			if !errkind.IsOk(kerr) {
				p.log.Debug().Err(kerr).Msg("communicate: stderr worker terminated")
			}
			closeAndClear(p.stderrCell, stderrEP)
		}()
	}

	_, waitErr := p.Wait(ctx)
	if waitErr != nil {
		cancel()
		wg.Wait()
		if kerr, ok := waitErr.(*errkind.Error); ok && kerr.Kind == errkind.Timeout {
			return Result{}, errkind.NewTimeout(errkind.TimeoutInfo{
				Command:      p.Args(),
				Deadline:     kerr.Timeout.Deadline,
				BytesWritten: bytesWritten,
				Stdout:       stdoutBuf,
				Stderr:       stderrBuf,
			})
		}
		return Result{}, waitErr
	}

	wg.Wait()
	return Result{
		BytesWritten: bytesWritten,
		Stdout:       stdoutBuf,
		Stderr:       stderrBuf,
	}, nil
}
