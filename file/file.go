// Package file implements the role-typed regular-file endpoint used
// when a caller redirects a child's stdin/stdout/stderr to an on-disk
// file, or to /dev/null for the DEVNULL option.
package file

import (
	"errors"
	"io"
	"os"
	"syscall"

	"github.com/geb0598/coj-go/buffer"
	"github.com/geb0598/coj-go/errkind"
	"github.com/geb0598/coj-go/pipe"
)

// classifyIOError unwraps the syscall.Errno behind an *os.PathError (or
// any other wrapped errno) so a genuine syscall failure surfaces as
// errkind.Errno rather than being mistaken for caller misuse. Falls
// back to Fatal when the error carries no errno at all.
func classifyIOError(op string, err error) *errkind.Error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errkind.NewErrno(errno)
	}
	return errkind.NewFatal("%s: %s", op, err.Error())
}

// Endpoint is an owning handle to a regular file opened read-only or
// write-only. Reading a write-only endpoint, or writing a read-only
// one, is a caller error and returns errkind.InvalidArg.
type Endpoint struct {
	f    *os.File
	role pipe.Role
}

// Open opens path with the access matching role.
func Open(path string, role pipe.Role) (*Endpoint, error) {
	flag := os.O_RDONLY
	if role == pipe.RoleWrite {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, err
	}
	return &Endpoint{f: f, role: role}, nil
}

// OpenDevNull opens /dev/null write-only, the DEVNULL destination.
func OpenDevNull() (*Endpoint, error) {
	return Open(os.DevNull, pipe.RoleWrite)
}

// File returns the underlying *os.File, for wiring into exec.Cmd.
func (e *Endpoint) File() *os.File { return e.f }

// Role reports whether this endpoint is read-only or write-only.
func (e *Endpoint) Role() pipe.Role { return e.role }

// Close closes the underlying file exactly once.
func (e *Endpoint) Close() error { return e.f.Close() }

// Read loops until size bytes are collected or EOF.
func (e *Endpoint) Read(size int) (*buffer.Buffer, *errkind.Error) {
	if e.role != pipe.RoleRead {
		return buffer.New(0), errkind.NewInvalidArg("Read called on a write-only file endpoint")
	}
	out := buffer.New(size)
	chunk := make([]byte, size)
	for out.Len() < size {
		n, err := e.f.Read(chunk[:size-out.Len()])
		if n > 0 {
			out.Append(chunk[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) || n == 0 {
				return out, errkind.NewEOF()
			}
			return out, classifyIOError("file read failed", err)
		}
	}
	return out, errkind.NewOk()
}

// Write loops until all size bytes starting at offset are written,
// then syncs the file. A file that does not support syncing (such as
// /dev/null, which reports EINVAL) is not treated as an error.
func (e *Endpoint) Write(data []byte, offset, size int) (int, *errkind.Error) {
	if e.role != pipe.RoleWrite {
		return 0, errkind.NewInvalidArg("Write called on a read-only file endpoint")
	}
	if offset < 0 || size < 0 || offset+size > len(data) {
		return 0, errkind.NewInvalidArg(
			"write range [%d:%d+%d] out of bounds for %d-byte buffer",
			offset, offset, size, len(data))
	}
	slice := data[offset : offset+size]
	written := 0
	for written < len(slice) {
		n, err := e.f.Write(slice[written:])
		written += n
		if err != nil {
			return written, classifyIOError("file write failed", err)
		}
	}
	if err := e.f.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
		return written, classifyIOError("file flush failed", err)
	}
	return written, errkind.NewOk()
}
