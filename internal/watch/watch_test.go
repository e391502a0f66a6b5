package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ion-lang/ionls/internal/config"
	"github.com/ion-lang/ionls/internal/lsp/vfs"
)

func testConfig(root string) *config.Config {
	return &config.Config{
		Project: config.Project{Root: root},
		Watch:   config.Watch{Glob: "**/*.ion", DebounceMs: 20},
		Exclude: []string{"**/.git/**"},
	}
}

func TestWatcher_DiscoversNewFile(t *testing.T) {
	root := t.TempDir()
	target := vfs.New()

	w, err := New(testConfig(root), target)
	require.NoError(t, err)
	require.NoError(t, w.Start(root))
	defer w.Stop()

	path := filepath.Join(root, "a.ion")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	select {
	case task := <-target.Tasks():
		assert.Equal(t, vfs.TaskDiscovered, task.Kind)
		assert.Equal(t, path, task.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for discovered task")
	}
}

func TestWatcher_IgnoresNonMatchingFile(t *testing.T) {
	root := t.TempDir()
	target := vfs.New()

	w, err := New(testConfig(root), target)
	require.NoError(t, err)
	require.NoError(t, w.Start(root))
	defer w.Stop()

	path := filepath.Join(root, "README.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	select {
	case task := <-target.Tasks():
		t.Fatalf("unexpected task for non-matching file: %+v", task)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncer_CoalescesRapidEvents(t *testing.T) {
	var flushed map[string]vfs.TaskKind
	done := make(chan struct{})

	d := newDebouncer(20*time.Millisecond, func(events map[string]vfs.TaskKind) {
		flushed = events
		close(done)
	})

	d.add("/a.ion", vfs.TaskDiscovered)
	d.add("/a.ion", vfs.TaskChanged)

	select {
	case <-done:
		assert.Equal(t, vfs.TaskChanged, flushed["/a.ion"], "only the latest kind per path should survive")
		assert.Len(t, flushed, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}
}
