package ipc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geb0598/coj-go/errkind"
	"github.com/geb0598/coj-go/ipc"
)

func TestSourceValidateRejectsStdoutAndDevnull(t *testing.T) {
	s := ipc.NewSourcePipe()
	assert.True(t, errkind.IsOk(s.Validate()))

	bad := ipc.Source{Option: ipc.Stdout}
	assert.False(t, errkind.IsOk(bad.Validate()))

	bad = ipc.Source{Option: ipc.Devnull}
	assert.False(t, errkind.IsOk(bad.Validate()))
}

func TestDestinationValidateAllowsStdoutOnlyForStderr(t *testing.T) {
	d := ipc.NewDestinationStdout()
	assert.False(t, errkind.IsOk(d.Validate(false)))
	assert.True(t, errkind.IsOk(d.Validate(true)))
}

func TestSourceResolvePipeExposesBothEnds(t *testing.T) {
	s := ipc.NewSourcePipe()
	kerr := s.Resolve()
	require.True(t, errkind.IsOk(kerr))
	defer s.ParentPipe().Close()
	defer s.ChildPipe().Close()

	assert.NotNil(t, s.ParentPipe())
	assert.NotNil(t, s.ChildPipe())
	assert.Nil(t, s.ChildFile())
}

func TestSourceResolveFileOpensReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	s := ipc.NewSourceFile(path)
	kerr := s.Resolve()
	require.True(t, errkind.IsOk(kerr))
	defer s.ChildFile().Close()

	assert.Nil(t, s.ParentPipe())
	assert.NotNil(t, s.ChildFile())
}

func TestDestinationResolveDevnull(t *testing.T) {
	d := ipc.NewDestinationDevnull()
	kerr := d.Resolve()
	require.True(t, errkind.IsOk(kerr))
	defer d.ChildFile().Close()
	assert.NotNil(t, d.ChildFile())
}

func TestDestinationResolveStdoutIsNoop(t *testing.T) {
	d := ipc.NewDestinationStdout()
	kerr := d.Resolve()
	assert.True(t, errkind.IsOk(kerr))
	assert.Nil(t, d.ChildFile())
	assert.Nil(t, d.ParentPipe())
}
