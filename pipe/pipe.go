// Package pipe implements the non-blocking anonymous-pipe endpoint: an
// owning handle to one end of a pipe, offering chunked and bulk
// read/write with EINTR/EAGAIN retry classification and
// PIPE_BUF-bounded atomic writes.
//
// Endpoints are built directly on golang.org/x/sys/unix rather than
// os.File. os.File's runtime-integrated poller already retries EAGAIN
// transparently, which would hide the retry counts and partial-write
// byte accounting callers need to observe, so this package manages the
// fd itself instead.
package pipe

import (
	"context"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/geb0598/coj-go/buffer"
	"github.com/geb0598/coj-go/errkind"
	"github.com/geb0598/coj-go/internal/config"
)

// Role tags which direction an Endpoint may be used in.
type Role int

const (
	RoleRead Role = iota
	RoleWrite
)

// EintrRetryLimit bounds how many times a Read or Write retries after
// EINTR before surfacing the errno to the caller.
const EintrRetryLimit = 100

// BufSize is the atomic pipe write size (PIPE_BUF) as Linux defines it,
// written out here because golang.org/x/sys/unix does not export
// PIPE_BUF. On Linux, writes of at most this many bytes are atomic with
// respect to other writers on the same pipe.
const BufSize = 4096

// transientRetryDelay is the sleep interval ReadAll/WriteAll use when
// retrying after EINTR/EAGAIN, taken from config.Defaults when the
// package is initialized.
var transientRetryDelay = config.Load().TransientRetryDelay

// Endpoint is an owning handle to one end of an anonymous pipe.
type Endpoint struct {
	mu     sync.Mutex
	fd     int
	role   Role
	closed bool
}

// NewPair creates an anonymous pipe and wraps both ends. Neither end
// is placed in non-blocking mode yet: the caller decides which end it
// will retain and use through this package's Read/Write (and must call
// MakeNonblocking on that one before use), and which end it will hand
// off whole to a child process via ToFile.
func NewPair() (readEnd, writeEnd *Endpoint, err error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, nil, err
	}
	return &Endpoint{fd: fds[0], role: RoleRead},
		&Endpoint{fd: fds[1], role: RoleWrite}, nil
}

// MakeNonblocking puts the endpoint's fd into non-blocking mode. Call
// this on any endpoint this process intends to Read/Write directly;
// the descriptor stays non-blocking from this point until Close.
func (e *Endpoint) MakeNonblocking() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return unix.SetNonblock(e.fd, true)
}

// Role reports whether this endpoint is the read or write end.
func (e *Endpoint) Role() Role { return e.role }

// Fd returns the raw file descriptor, for diagnostics only.
func (e *Endpoint) Fd() int { return e.fd }

// ToFile hands this endpoint's fd off wholesale, wrapped as *os.File
// for wiring into exec.Cmd.Stdin/Stdout/Stderr. After this call the
// Endpoint no longer owns the fd; only the returned *os.File does.
func (e *Endpoint) ToFile(name string) *os.File {
	e.mu.Lock()
	defer e.mu.Unlock()
	f := os.NewFile(uintptr(e.fd), name)
	e.closed = true // ownership transferred; nothing left for us to close
	return f
}

// Close closes the underlying fd exactly once.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return unix.Close(e.fd)
}

// Read attempts to fill up to size bytes. A zero-byte, no-error result
// from the underlying syscall is reported as EOF; EINTR is retried up
// to EintrRetryLimit times before its errno is surfaced to the caller.
func (e *Endpoint) Read(size int) (*buffer.Buffer, *errkind.Error) {
	out := buffer.New(size)
	if size == 0 {
		return out, errkind.NewOk()
	}
	if e.role != RoleRead {
		return out, errkind.NewInvalidArg("Read called on a write-only pipe endpoint")
	}
	chunk := make([]byte, size)
	attempts := 0
	for {
		e.mu.Lock()
		n, err := unix.Read(e.fd, chunk)
		e.mu.Unlock()
		if err == nil {
			if n == 0 {
				return out, errkind.NewEOF()
			}
			out.Append(chunk[:n])
			return out, errkind.NewOk()
		}
		errno, _ := err.(unix.Errno)
		switch errno {
		case unix.EINTR:
			attempts++
			if attempts <= EintrRetryLimit {
				continue
			}
			return out, errkind.NewErrno(errno)
		default:
			return out, errkind.NewErrno(errno)
		}
	}
}

// ReadAll repeatedly reads BufSize chunks until EOF, sleeping and
// retrying on transient errors, and checking ctx before each iteration.
func (e *Endpoint) ReadAll(ctx context.Context) (*buffer.Buffer, *errkind.Error) {
	out := buffer.New(BufSize)
	for {
		if ctx != nil && ctx.Err() != nil {
			return out, errkind.NewOk()
		}
		chunk, kerr := e.Read(BufSize)
		out.Append(chunk.Bytes())
		if errkind.IsEOF(kerr) {
			return out, errkind.NewOk()
		}
		if errkind.IsTransient(kerr) {
			time.Sleep(transientRetryDelay)
			continue
		}
		if !errkind.IsOk(kerr) {
			return out, kerr
		}
	}
}

// Write validates offset+size, then writes, retrying on EINTR up to
// EintrRetryLimit and returning the partial count on EPIPE or any
// other terminal errno.
func (e *Endpoint) Write(data []byte, offset, size int) (int, *errkind.Error) {
	if offset < 0 || size < 0 || offset+size > len(data) {
		return 0, errkind.NewInvalidArg(
			"write range [%d:%d+%d] out of bounds for %d-byte buffer",
			offset, offset, size, len(data))
	}
	if size == 0 {
		return 0, errkind.NewOk()
	}
	if e.role != RoleWrite {
		return 0, errkind.NewInvalidArg("Write called on a read-only pipe endpoint")
	}
	slice := data[offset : offset+size]
	written := 0
	attempts := 0
	for written < len(slice) {
		e.mu.Lock()
		n, err := unix.Write(e.fd, slice[written:])
		e.mu.Unlock()
		if err == nil {
			written += n
			attempts = 0
			continue
		}
		errno, _ := err.(unix.Errno)
		switch errno {
		case unix.EINTR:
			attempts++
			if attempts <= EintrRetryLimit {
				continue
			}
			return written, errkind.NewErrno(errno)
		default:
			return written, errkind.NewErrno(errno)
		}
	}
	return written, errkind.NewOk()
}

// WriteAll chunks data into at most BufSize slices, each atomic with
// respect to concurrent writers on the same write end, sleeping and
// retrying on transient errors and checking ctx before each chunk.
func (e *Endpoint) WriteAll(ctx context.Context, data []byte, offset int) (int, *errkind.Error) {
	total := 0
	remaining := data[offset:]
	for len(remaining) > 0 {
		if ctx != nil && ctx.Err() != nil {
			return total, errkind.NewOk()
		}
		chunkSize := len(remaining)
		if chunkSize > BufSize {
			chunkSize = BufSize
		}
		n, kerr := e.Write(remaining, 0, chunkSize)
		total += n
		remaining = remaining[n:]
		if errkind.IsTransient(kerr) {
			time.Sleep(transientRetryDelay)
			continue
		}
		if !errkind.IsOk(kerr) {
			return total, kerr
		}
	}
	return total, errkind.NewOk()
}
