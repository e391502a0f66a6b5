package engine

import (
	"testing"
	"time"

	lsperrors "github.com/ion-lang/ionls/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeDatabase_SnapshotIsolation(t *testing.T) {
	db := NewFakeDatabase()
	db.SetFileText(1, "hello")

	snap := db.Snapshot()
	text, err := snap.FileText(1)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	db.SetFileText(1, "world")
	// the earlier snapshot is now stale.
	_, err = snap.FileText(1)
	assert.True(t, lsperrors.IsCancelled(err))

	fresh := db.Snapshot()
	text, err = fresh.FileText(1)
	require.NoError(t, err)
	assert.Equal(t, "world", text)
}

func TestFakeDatabase_AddLibrary(t *testing.T) {
	db := NewFakeDatabase()
	db.AddLibrary(LibraryData{Name: "std", Files: map[int]string{10: "lib body"}})

	snap := db.Snapshot()
	text, err := snap.FileText(10)
	require.NoError(t, err)
	assert.Equal(t, "lib body", text)
}

func TestFakeLoader_ResolvesRoot(t *testing.T) {
	loader := NewFakeLoader()
	defer loader.Shutdown()

	loader.Request() <- "/workspace/root"

	select {
	case result := <-loader.Reply():
		require.NoError(t, result.Err)
		assert.Equal(t, "/workspace/root", result.Workspace.Root)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for workspace load reply")
	}
}
