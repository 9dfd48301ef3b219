package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geb0598/coj-go/errkind"
	"github.com/geb0598/coj-go/file"
	"github.com/geb0598/coj-go/pipe"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	w, err := file.Open(path, pipe.RoleWrite)
	require.NoError(t, err)
	n, kerr := w.Write([]byte("hello world"), 0, 11)
	require.True(t, errkind.IsOk(kerr))
	assert.Equal(t, 11, n)
	require.NoError(t, w.Close())

	r, err := file.Open(path, pipe.RoleRead)
	require.NoError(t, err)
	defer r.Close()
	buf, kerr := r.Read(11)
	require.True(t, errkind.IsOk(kerr))
	assert.Equal(t, "hello world", string(buf.Bytes()))
}

func TestReadPastEndReturnsEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	r, err := file.Open(path, pipe.RoleRead)
	require.NoError(t, err)
	defer r.Close()

	buf, kerr := r.Read(10)
	assert.True(t, errkind.IsEOF(kerr))
	assert.Equal(t, "hi", string(buf.Bytes()))
}

func TestWriteOnReadOnlyEndpointIsInvalidArg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	r, err := file.Open(path, pipe.RoleRead)
	require.NoError(t, err)
	defer r.Close()

	_, kerr := r.Write([]byte("y"), 0, 1)
	assert.False(t, errkind.IsOk(kerr))
	assert.Equal(t, errkind.InvalidArg, kerr.Kind)
}

func TestOpenDevNull(t *testing.T) {
	dn, err := file.OpenDevNull()
	require.NoError(t, err)
	defer dn.Close()

	n, kerr := dn.Write([]byte("discarded"), 0, 9)
	assert.True(t, errkind.IsOk(kerr))
	assert.Equal(t, 9, n)
}
