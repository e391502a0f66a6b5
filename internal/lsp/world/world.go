// Package world composes the VFS, the analysis engine, file subscriptions
// and the pending-request table into the single mutable state the main
// loop owns and the dispatcher reads immutable snapshots of.
package world

import (
	"fmt"

	"github.com/ion-lang/ionls/internal/engine"
	"github.com/ion-lang/ionls/internal/lsp/pending"
	"github.com/ion-lang/ionls/internal/lsp/subs"
	"github.com/ion-lang/ionls/internal/lsp/vfs"
)

// World is the loop thread's authoritative state. All mutating methods must
// be called from the loop thread; Snapshot produces an immutable view safe
// to hand to pool workers.
type World struct {
	VFS     *vfs.VFS
	DB      engine.Database
	Subs    *subs.Subscriptions
	Pending *pending.Table

	roots       []string
	rootsToScan int

	pendingLibs []LibraryRequest
}

// LibraryRequest names a library the workspace loader discovered that still
// needs to be indexed by the analysis engine.
type LibraryRequest struct {
	Name string
	Root string
}

// New returns a World rooted at roots, with an empty VFS-subscriber and
// pending-request table. rootsToScan starts at len(roots): the loop
// decrements it once per root as the workspace loader reports each one
// scanned, and feedback.InternalMode consumers use the zero-crossing to emit
// a one-shot "workspace loaded" notification.
func New(db engine.Database, roots []string) *World {
	return &World{
		VFS:         vfs.New(),
		DB:          db,
		Subs:        subs.New(),
		Pending:     pending.New(),
		roots:       roots,
		rootsToScan: len(roots),
	}
}

// Roots returns the workspace roots this World was constructed with.
func (w *World) Roots() []string {
	return w.roots
}

// AddRoots merges additional resolved source roots discovered by the
// workspace loader into the World.
func (w *World) AddRoots(roots []string) {
	w.roots = append(w.roots, roots...)
}

// RootsToScan reports how many workspace roots are still being loaded.
func (w *World) RootsToScan() int {
	return w.rootsToScan
}

// RootScanned records that one workspace root finished loading, reporting
// whether this was the last one (the signal to fire the one-shot workspace-
// loaded notification).
func (w *World) RootScanned() bool {
	if w.rootsToScan <= 0 {
		return false
	}
	w.rootsToScan--
	return w.rootsToScan == 0
}

// Snapshot is an immutable combined view of VFS contents and analysis-engine
// state, safe to pass to a pool worker.
type Snapshot struct {
	Files map[vfs.FileID]string
	Paths map[string]vfs.FileID
	DB    engine.Snapshot
}

// Snapshot takes an immutable view of the current World state.
func (w *World) Snapshot() Snapshot {
	return Snapshot{Files: w.VFS.Snapshot(), Paths: w.VFS.PathIndex(), DB: w.DB.Snapshot()}
}

// FileIDForURI resolves a document URI to its FileID within this snapshot.
func (s Snapshot) FileIDForURI(uri vfs.Uri) (vfs.FileID, bool) {
	path, err := uri.ToPath()
	if err != nil {
		return 0, false
	}
	id, ok := s.Paths[path]
	return id, ok
}

// Text returns the snapshot's content for fileID, preferring the VFS
// overlay copy and falling back to the analysis engine's view.
func (s Snapshot) Text(fileID vfs.FileID) (string, error) {
	if text, ok := s.Files[fileID]; ok {
		return text, nil
	}
	return s.DB.FileText(int(fileID))
}

// QueueLibrary records that a library still needs indexing. Drained by the
// next ProcessChanges call.
func (w *World) QueueLibrary(req LibraryRequest) {
	w.pendingLibs = append(w.pendingLibs, req)
}

// ProcessChanges returns and clears the libraries queued since the last
// call, so the loop can submit each onto the pool for indexing.
func (w *World) ProcessChanges() []LibraryRequest {
	out := w.pendingLibs
	w.pendingLibs = nil
	return out
}

// AddLib merges a finished library-indexing result into the analysis
// engine's database.
func (w *World) AddLib(lib engine.LibraryData) {
	w.DB.AddLibrary(lib)
}

func (w *World) resolvePath(uri vfs.Uri) (string, error) {
	path, err := uri.ToPath()
	if err != nil {
		return "", fmt.Errorf("world: %w", err)
	}
	return path, nil
}
