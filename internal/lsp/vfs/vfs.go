// Package vfs implements the virtual-filesystem overlay: the authoritative
// holder of file contents, where editor-provided "overlay" text shadows
// on-disk content for files the client currently has open.
package vfs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// FileID is the engine's opaque dense integer file identifier.
type FileID int

// Uri is the protocol-level opaque URL-like string.
type Uri string

// ToPath converts a Uri to a local filesystem path. Only the file:// scheme
// is supported; anything else cannot be converted to a local path.
func (u Uri) ToPath() (string, error) {
	const scheme = "file://"
	s := string(u)
	if !strings.HasPrefix(s, scheme) {
		return "", fmt.Errorf("uri %q cannot be converted to a local path", s)
	}
	return strings.TrimPrefix(s, scheme), nil
}

// PathToUri converts a local filesystem path back to a file:// Uri.
func PathToUri(path string) Uri {
	return Uri("file://" + path)
}

// TaskKind classifies a VFS background task, produced by the filesystem
// watcher and consumed by the main loop via the VFS task channel.
type TaskKind int

const (
	TaskDiscovered TaskKind = iota
	TaskChanged
	TaskRemoved
)

// Task is one unit of VFS-originated work the main loop must apply: a
// filesystem-watcher observation that a path outside the editor's control
// appeared, changed, or disappeared.
type Task struct {
	Kind TaskKind
	Path string
}

// VFS holds authoritative file contents behind a reader/writer lock: writes
// are confined to the main-loop thread; reads (through Text) may run on
// pool workers via a snapshot copy taken while holding the read lock.
type VFS struct {
	mu       sync.RWMutex
	nextID   FileID
	pathToID map[string]FileID
	idToPath map[FileID]string
	contents map[FileID]string
	hashes   map[FileID]uint64
	overlay  map[FileID]bool

	tasks chan Task
}

// New returns an empty VFS whose task channel buffers up to 256 tasks;
// PostTask blocks while the buffer is full.
func New() *VFS {
	return &VFS{
		pathToID: make(map[string]FileID),
		idToPath: make(map[FileID]string),
		contents: make(map[FileID]string),
		hashes:   make(map[FileID]uint64),
		overlay:  make(map[FileID]bool),
		tasks:    make(chan Task, 256),
	}
}

// Tasks returns the channel the filesystem watcher posts discovered/
// changed/removed events to.
func (v *VFS) Tasks() <-chan Task {
	return v.tasks
}

// PostTask enqueues a watcher-originated task. Safe to call from the
// watcher goroutine; the main loop is the sole consumer.
func (v *VFS) PostTask(task Task) {
	v.tasks <- task
}

// Shutdown closes the task channel. The VFS must not be used afterward;
// callers must ensure they hold the only remaining reference (all
// snapshots dropped) before calling this, per the core's teardown contract.
func (v *VFS) Shutdown() error {
	close(v.tasks)
	return nil
}

func (v *VFS) idForPathLocked(path string) FileID {
	if id, ok := v.pathToID[path]; ok {
		return id
	}
	id := v.nextID
	v.nextID++
	v.pathToID[path] = id
	v.idToPath[id] = path
	return id
}

// AddFileOverlay installs text as path's overlay, assigning it a FileID if
// this is the first time path has been seen.
func (v *VFS) AddFileOverlay(path, text string) FileID {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.idForPathLocked(path)
	v.contents[id] = text
	v.hashes[id] = xxhash.Sum64String(text)
	v.overlay[id] = true
	return id
}

// ChangeFileOverlay replaces path's overlay text. Reports changed=false
// (and skips the hash/content write) when text is byte-identical to the
// existing overlay, so callers can skip re-publishing diagnostics for a
// no-op resave.
func (v *VFS) ChangeFileOverlay(path, text string) (id FileID, ok bool, changed bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id, ok = v.pathToID[path]
	if !ok {
		return 0, false, false
	}
	h := xxhash.Sum64String(text)
	if v.hashes[id] == h {
		return id, true, false
	}
	v.contents[id] = text
	v.hashes[id] = h
	return id, true, true
}

// RemoveFileOverlay removes path's overlay, reporting the FileID that was
// removed if one existed.
func (v *VFS) RemoveFileOverlay(path string) (FileID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id, ok := v.pathToID[path]
	if !ok {
		return 0, false
	}
	delete(v.contents, id)
	delete(v.hashes, id)
	delete(v.overlay, id)
	return id, true
}

// IsOverlayOwned reports whether path currently has editor-provided overlay
// content installed, as opposed to only disk content set by the watcher.
func (v *VFS) IsOverlayOwned(path string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.pathToID[path]
	if !ok {
		return false
	}
	return v.overlay[id]
}

// SetDiskFile records content observed on disk (via the filesystem watcher)
// for path. A no-op, reporting ok=false, when path currently has editor
// overlay content: overlay content always shadows disk content.
func (v *VFS) SetDiskFile(path, text string) (id FileID, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id = v.idForPathLocked(path)
	if v.overlay[id] {
		return id, false
	}
	v.contents[id] = text
	v.hashes[id] = xxhash.Sum64String(text)
	return id, true
}

// RemoveDiskFile forgets disk-observed content for path. A no-op, reporting
// ok=false, when path currently has editor overlay content.
func (v *VFS) RemoveDiskFile(path string) (id FileID, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id, exists := v.pathToID[path]
	if !exists {
		return 0, false
	}
	if v.overlay[id] {
		return id, false
	}
	delete(v.contents, id)
	delete(v.hashes, id)
	return id, true
}

// Text returns the current contents of fileID.
func (v *VFS) Text(fileID FileID) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	text, ok := v.contents[fileID]
	return text, ok
}

// Snapshot returns an immutable copy of all current file contents, safe to
// hand to a worker goroutine.
func (v *VFS) Snapshot() map[FileID]string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[FileID]string, len(v.contents))
	for id, text := range v.contents {
		out[id] = text
	}
	return out
}

// PathIndex returns an immutable copy of the path-to-FileID mapping, so
// callers can resolve a document URI's path to the FileID snapshot reads
// need without touching the live VFS.
func (v *VFS) PathIndex() map[string]FileID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]FileID, len(v.pathToID))
	for path, id := range v.pathToID {
		out[path] = id
	}
	return out
}

// PathFor returns the path fileID was registered under, if any.
func (v *VFS) PathFor(fileID FileID) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	path, ok := v.idToPath[fileID]
	return path, ok
}
