// Package buffer implements the owning, resizable byte sequence used
// everywhere bytes cross a pipe or file boundary in this library.
//
// This is deliberately a thin wrapper over []byte rather than an
// import of a third-party buffer library: the domain need here is
// exactly "append bytes, read a bounds-checked subrange back out",
// which the standard library slice and bytes.Buffer already express;
// see DESIGN.md for the fuller justification.
package buffer

import "github.com/geb0598/coj-go/errkind"

// Buffer is an owning, appendable byte sequence.
type Buffer struct {
	data []byte
}

// New returns an empty Buffer with the given initial capacity hint.
func New(capacityHint int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacityHint)}
}

// FromBytes wraps an existing slice, taking ownership of it.
func FromBytes(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Len returns the number of bytes currently held.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Append adds data to the end of the buffer.
func (b *Buffer) Append(data []byte) {
	b.data = append(b.data, data...)
}

// Bytes returns the full contents. The caller must not mutate it.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Slice returns the bounds-checked subrange [offset, offset+size).
func (b *Buffer) Slice(offset, size int) ([]byte, *errkind.Error) {
	if offset < 0 || size < 0 || offset+size > len(b.data) {
		return nil, errkind.NewInvalidArg(
			"slice [%d:%d+%d] out of range for buffer of length %d",
			offset, offset, size, len(b.data))
	}
	return b.data[offset : offset+size], errkind.NewOk()
}

// Reset empties the buffer while retaining its backing array.
func (b *Buffer) Reset() { b.data = b.data[:0] }
