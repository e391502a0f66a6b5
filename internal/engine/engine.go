// Package engine defines the interfaces this core requires of the
// syntactic/semantic analysis engine and the workspace loader — both
// external collaborators per the server's scope: only their interfaces are
// fixed here, not their implementations. It also provides a minimal
// in-memory fake sufficient to make World and its snapshots real and
// testable without a production analysis engine.
package engine

import (
	"fmt"

	lsperrors "github.com/ion-lang/ionls/internal/errors"
)

// LibraryData is the result of indexing one external library, produced by
// a background task on the worker pool and merged into the Database by
// World.AddLib.
type LibraryData struct {
	Name  string
	Files map[int]string
}

// Workspace is the result of loading one project root: at minimum the set
// of source roots the workspace resolved to. Produced by a WorkspaceLoader.
type Workspace struct {
	Root  string
	Roots []string
}

// Snapshot is an immutable, cheaply cloneable view of the analysis database
// at a point in time. Reads through a snapshot that has been superseded by
// a newer Database mutation return an error wrapping errors.Cancelled.
type Snapshot interface {
	// FileText returns the current text of fileID as seen by this snapshot.
	FileText(fileID int) (string, error)
}

// Database is the writable analysis engine handle: the single owner of
// whatever semantic index backs snapshots. Mutated only on the loop thread.
type Database interface {
	// Snapshot returns an immutable view of the database's current state.
	Snapshot() Snapshot
	// SetFileText installs or updates the text the engine associates with
	// fileID, invalidating any outstanding snapshot's view of that file.
	SetFileText(fileID int, text string)
	// RemoveFile drops fileID from the database.
	RemoveFile(fileID int)
	// AddLibrary merges an indexed library's files into the database.
	AddLibrary(lib LibraryData)
}

// FakeDatabase is an in-memory Database sufficient for tests and for
// running this core without a production analysis engine wired in. Every
// mutation bumps a generation counter; snapshots capture the generation at
// creation time and report errors.Cancelled on any read once a newer
// generation exists, modeling the cancellation-on-supersede contract
// real engines implement via a thread-local token.
type FakeDatabase struct {
	generation int
	files      map[int]string
}

// NewFakeDatabase returns an empty FakeDatabase.
func NewFakeDatabase() *FakeDatabase {
	return &FakeDatabase{files: make(map[int]string)}
}

func (d *FakeDatabase) Snapshot() Snapshot {
	files := make(map[int]string, len(d.files))
	for k, v := range d.files {
		files[k] = v
	}
	return &fakeSnapshot{generation: d.generation, current: &d.generation, files: files}
}

func (d *FakeDatabase) SetFileText(fileID int, text string) {
	d.files[fileID] = text
	d.generation++
}

func (d *FakeDatabase) RemoveFile(fileID int) {
	delete(d.files, fileID)
	d.generation++
}

func (d *FakeDatabase) AddLibrary(lib LibraryData) {
	for id, text := range lib.Files {
		d.files[id] = text
	}
	d.generation++
}

type fakeSnapshot struct {
	generation int
	current    *int
	files      map[int]string
}

func (s *fakeSnapshot) FileText(fileID int) (string, error) {
	if *s.current != s.generation {
		return "", lsperrors.NewCancelled("database mutated since snapshot was taken")
	}
	text, ok := s.files[fileID]
	if !ok {
		return "", fmt.Errorf("file %d not found", fileID)
	}
	return text, nil
}

// WorkspaceLoader loads a workspace for a root path on a short-lived
// background worker, communicating over a request/reply channel pair per
// the core's external-interface contract.
type WorkspaceLoader interface {
	// Request returns the channel root paths are sent on.
	Request() chan<- string
	// Reply returns the channel Workspace results arrive on.
	Reply() <-chan LoadResult
	// Shutdown stops the loader's background worker.
	Shutdown()
}

// LoadResult is one workspace load outcome.
type LoadResult struct {
	Workspace Workspace
	Err       error
}

// FakeLoader is a WorkspaceLoader that resolves every root to a
// single-element workspace without touching any build system, suitable for
// tests and for running without a real project-model loader wired in.
type FakeLoader struct {
	reqCh  chan string
	respCh chan LoadResult
	done   chan struct{}
}

// NewFakeLoader starts a FakeLoader's background worker and returns it.
func NewFakeLoader() *FakeLoader {
	l := &FakeLoader{
		reqCh:  make(chan string),
		respCh: make(chan LoadResult),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *FakeLoader) run() {
	for {
		select {
		case root, ok := <-l.reqCh:
			if !ok {
				return
			}
			l.respCh <- LoadResult{Workspace: Workspace{Root: root, Roots: []string{root}}}
		case <-l.done:
			return
		}
	}
}

func (l *FakeLoader) Request() chan<- string   { return l.reqCh }
func (l *FakeLoader) Reply() <-chan LoadResult { return l.respCh }
func (l *FakeLoader) Shutdown() {
	close(l.done)
}
