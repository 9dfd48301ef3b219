package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geb0598/coj-go/buffer"
	"github.com/geb0598/coj-go/errkind"
)

func TestNew(t *testing.T) {
	b := buffer.New(10)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, []byte{}, b.Bytes())
}

func TestFromBytes(t *testing.T) {
	b := buffer.FromBytes([]byte("hello"))
	assert.Equal(t, 5, b.Len())
	assert.Equal(t, []byte("hello"), b.Bytes())
}

func TestAppend(t *testing.T) {
	b := buffer.New(0)
	b.Append([]byte("ab"))
	b.Append([]byte("cd"))
	assert.Equal(t, "abcd", string(b.Bytes()))
	assert.Equal(t, 4, b.Len())
}

func TestSlice(t *testing.T) {
	b := buffer.FromBytes([]byte("abcdef"))
	got, kerr := b.Slice(2, 3)
	assert.True(t, errkind.IsOk(kerr))
	assert.Equal(t, []byte("cde"), got)

	_, kerr = b.Slice(4, 10)
	assert.False(t, errkind.IsOk(kerr))
}

func TestReset(t *testing.T) {
	b := buffer.FromBytes([]byte("abc"))
	b.Reset()
	assert.Equal(t, 0, b.Len())
}
