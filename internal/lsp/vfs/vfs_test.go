package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUriToPath(t *testing.T) {
	path, err := Uri("file:///home/user/main.ion").ToPath()
	require.NoError(t, err)
	assert.Equal(t, "/home/user/main.ion", path)

	_, err = Uri("untitled:Untitled-1").ToPath()
	assert.Error(t, err)
}

func TestAddChangeRemoveOverlay(t *testing.T) {
	v := New()

	id := v.AddFileOverlay("/a.ion", "first")
	text, ok := v.Text(id)
	require.True(t, ok)
	assert.Equal(t, "first", text)

	changedID, ok, changed := v.ChangeFileOverlay("/a.ion", "second")
	require.True(t, ok)
	assert.True(t, changed)
	assert.Equal(t, id, changedID)
	text, _ = v.Text(id)
	assert.Equal(t, "second", text)

	removedID, ok := v.RemoveFileOverlay("/a.ion")
	require.True(t, ok)
	assert.Equal(t, id, removedID)
	_, ok = v.Text(id)
	assert.False(t, ok)
}

func TestChangeFileOverlay_UnknownPath(t *testing.T) {
	v := New()
	_, ok, changed := v.ChangeFileOverlay("/missing.ion", "text")
	assert.False(t, ok)
	assert.False(t, changed)
}

func TestChangeFileOverlay_IdenticalContentNoOp(t *testing.T) {
	v := New()
	id := v.AddFileOverlay("/a.ion", "same")

	_, ok, changed := v.ChangeFileOverlay("/a.ion", "same")
	require.True(t, ok)
	assert.False(t, changed, "resaving identical content should not report a change")

	text, _ := v.Text(id)
	assert.Equal(t, "same", text)
}

func TestAddFileOverlay_StableIDAcrossReopen(t *testing.T) {
	v := New()
	id1 := v.AddFileOverlay("/a.ion", "one")
	v.RemoveFileOverlay("/a.ion")
	id2 := v.AddFileOverlay("/a.ion", "two")

	assert.Equal(t, id1, id2, "reopening the same path replaces, not duplicates, the overlay")
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	v := New()
	id := v.AddFileOverlay("/a.ion", "v1")

	snap := v.Snapshot()
	v.ChangeFileOverlay("/a.ion", "v2")

	assert.Equal(t, "v1", snap[id])
	text, _ := v.Text(id)
	assert.Equal(t, "v2", text)
}

func TestReplayOntoFreshVFSMatches(t *testing.T) {
	ops := func(v *VFS) {
		v.AddFileOverlay("/a.ion", "hello")
		v.AddFileOverlay("/b.ion", "world")
		v.ChangeFileOverlay("/a.ion", "hello!")
		v.RemoveFileOverlay("/b.ion")
	}

	v1 := New()
	ops(v1)
	v2 := New()
	ops(v2)

	assert.Equal(t, v1.Snapshot(), v2.Snapshot())
}
