package pipe_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geb0598/coj-go/errkind"
	"github.com/geb0598/coj-go/pipe"
)

func TestNewPairRoles(t *testing.T) {
	r, w, err := pipe.NewPair()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()
	assert.Equal(t, pipe.RoleRead, r.Role())
	assert.Equal(t, pipe.RoleWrite, w.Role())
}

func TestWriteThenRead(t *testing.T) {
	r, w, err := pipe.NewPair()
	require.NoError(t, err)
	require.NoError(t, r.MakeNonblocking())
	require.NoError(t, w.MakeNonblocking())
	defer r.Close()
	defer w.Close()

	msg := []byte("hello, pipe")
	n, kerr := w.Write(msg, 0, len(msg))
	require.True(t, errkind.IsOk(kerr))
	assert.Equal(t, len(msg), n)

	buf, kerr := r.Read(len(msg))
	require.True(t, errkind.IsOk(kerr))
	assert.Equal(t, msg, buf.Bytes())
}

func TestReadOnClosedWriteEndReturnsEOF(t *testing.T) {
	r, w, err := pipe.NewPair()
	require.NoError(t, err)
	require.NoError(t, r.MakeNonblocking())
	defer r.Close()

	require.NoError(t, w.Close())

	buf, kerr := r.Read(16)
	assert.True(t, errkind.IsEOF(kerr))
	assert.Equal(t, 0, buf.Len())
}

func TestWriteOnReadOnlyEndpointIsInvalidArg(t *testing.T) {
	r, w, err := pipe.NewPair()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	_, kerr := r.Write([]byte("x"), 0, 1)
	assert.False(t, errkind.IsOk(kerr))
	assert.Equal(t, errkind.InvalidArg, kerr.Kind)
}

func TestReadOnWriteOnlyEndpointIsInvalidArg(t *testing.T) {
	r, w, err := pipe.NewPair()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	_, kerr := w.Read(1)
	assert.False(t, errkind.IsOk(kerr))
	assert.Equal(t, errkind.InvalidArg, kerr.Kind)
}

func TestWriteAllChunksLargerThanBufSize(t *testing.T) {
	r, w, err := pipe.NewPair()
	require.NoError(t, err)
	require.NoError(t, r.MakeNonblocking())
	require.NoError(t, w.MakeNonblocking())
	defer r.Close()
	defer w.Close()

	data := make([]byte, pipe.BufSize*3+17)
	for i := range data {
		data[i] = byte(i % 251)
	}

	done := make(chan struct{})
	var written int
	var writeErr *errkind.Error
	go func() {
		written, writeErr = w.WriteAll(context.Background(), data, 0)
		_ = w.Close()
		close(done)
	}()

	got, readErr := r.ReadAll(context.Background())
	<-done

	require.True(t, errkind.IsOk(writeErr))
	require.True(t, errkind.IsOk(readErr))
	assert.Equal(t, len(data), written)
	assert.Equal(t, data, got.Bytes())
}

func TestWriteAllRespectsCancellation(t *testing.T) {
	r, w, err := pipe.NewPair()
	require.NoError(t, err)
	require.NoError(t, w.MakeNonblocking())
	defer r.Close()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, kerr := w.WriteAll(ctx, []byte("some data"), 0)
	assert.True(t, errkind.IsOk(kerr))
	assert.Equal(t, 0, n)
}

func TestOutOfBoundsWriteRangeIsInvalidArg(t *testing.T) {
	r, w, err := pipe.NewPair()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	_, kerr := w.Write([]byte("abc"), 1, 10)
	assert.False(t, errkind.IsOk(kerr))
	assert.Equal(t, errkind.InvalidArg, kerr.Kind)
}
