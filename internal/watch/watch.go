// Package watch implements the filesystem watcher: a recursive fsnotify
// watch over the workspace root, debounced and filtered down to the paths
// the analysis engine cares about, posting discovered/changed/removed
// observations onto the VFS task channel.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/ion-lang/ionls/internal/config"
	"github.com/ion-lang/ionls/internal/debug"
	"github.com/ion-lang/ionls/internal/lsp/vfs"
)

// Watcher monitors root for filesystem changes outside the editor's control
// and posts them to a VFS as Tasks.
type Watcher struct {
	fsw    *fsnotify.Watcher
	cfg    *config.Config
	target *vfs.VFS

	debouncer *debouncer

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Watcher that will post observations to target, filtered by
// cfg's include/exclude globs.
func New(cfg *config.Config, target *vfs.VFS) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:    fsw,
		cfg:    cfg,
		target: target,
		done:   make(chan struct{}),
	}
	w.debouncer = newDebouncer(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond, w.flushToVFS)
	return w, nil
}

// Start begins watching root, recursively adding watches to every directory
// not excluded by configuration, and spawns the event-processing and
// debouncer goroutines.
func (w *Watcher) Start(root string) error {
	if err := w.addWatches(root); err != nil {
		return fmt.Errorf("watch: adding watches under %s: %w", root, err)
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.debouncer.run(w.done, &w.wg)

	debug.LogWatcher("started watching %s", root)
	return nil
}

// Stop tears down the watcher and waits for its goroutines to exit. Pending
// debounced events at shutdown are dropped; the VFS is being torn down
// regardless.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		if w.shouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			debug.LogWatcher("failed to watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.cfg.Exclude {
		dirPattern := pattern
		if matched, _ := doublestar.Match(dirPattern, base); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
		rel, err := filepath.Rel(w.cfg.Project.Root, path)
		if err == nil {
			if matched, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); matched {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) shouldWatchFile(path string) bool {
	if matched, _ := doublestar.Match(w.cfg.Watch.Glob, filepath.ToSlash(path)); matched {
		return true
	}
	rel, err := filepath.Rel(w.cfg.Project.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if matched, _ := doublestar.Match(w.cfg.Watch.Glob, rel); matched {
		return true
	}
	for _, pattern := range w.cfg.Include {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.LogWatcher("fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	info, err := os.Stat(path)
	if err != nil {
		if event.Op&fsnotify.Remove != 0 && w.shouldWatchFile(path) {
			w.debouncer.add(path, vfs.TaskRemoved)
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.shouldIgnoreDir(path) {
			if err := w.fsw.Add(path); err != nil {
				debug.LogWatcher("failed to watch new directory %s: %v", path, err)
			}
		}
		return
	}

	if !w.shouldWatchFile(path) {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		w.debouncer.add(path, vfs.TaskDiscovered)
	case event.Op&fsnotify.Write != 0:
		w.debouncer.add(path, vfs.TaskChanged)
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		w.debouncer.add(path, vfs.TaskRemoved)
	}
}

// flushToVFS posts one debounced Task per path onto the target VFS.
func (w *Watcher) flushToVFS(events map[string]vfs.TaskKind) {
	for path, kind := range events {
		debug.LogWatcher("posting %v for %s", kind, path)
		w.target.PostTask(vfs.Task{Kind: kind, Path: path})
	}
}
