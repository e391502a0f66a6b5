package world

import (
	"fmt"

	"github.com/ion-lang/ionls/internal/jsonrpc"
	"github.com/ion-lang/ionls/internal/lsp/proto"
	"github.com/ion-lang/ionls/internal/lsp/vfs"
)

const methodPublishDiagnostics = "textDocument/publishDiagnostics"

// AddOverlay installs uri's editor-provided text as its overlay and
// subscribes the resulting FileID so it receives diagnostic republication.
func (w *World) AddOverlay(uri vfs.Uri, text string) (vfs.FileID, error) {
	path, err := w.resolvePath(uri)
	if err != nil {
		return 0, fmt.Errorf("add overlay: %w", err)
	}

	id := w.VFS.AddFileOverlay(path, text)
	w.Subs.Add(int(id))
	w.DB.SetFileText(int(id), text)
	return id, nil
}

// ChangeOverlay replaces uri's overlay text, propagating the change to the
// analysis engine only when the content actually differs from what is
// already installed.
func (w *World) ChangeOverlay(uri vfs.Uri, text string) error {
	path, err := w.resolvePath(uri)
	if err != nil {
		return fmt.Errorf("change overlay: %w", err)
	}

	id, ok, changed := w.VFS.ChangeFileOverlay(path, text)
	if !ok {
		return fmt.Errorf("change overlay: %s has no open overlay", path)
	}
	if changed {
		w.DB.SetFileText(int(id), text)
	}
	return nil
}

// RemoveOverlay drops uri's overlay, unsubscribes it, and returns a
// publishDiagnostics notification with an empty Diagnostics slice so the
// client clears stale marks left over from the closed overlay. The file's
// content is also dropped from the analysis engine; on-disk content is not
// reloaded, so the file stays absent until a watcher task reports it again.
func (w *World) RemoveOverlay(uri vfs.Uri) (*jsonrpc.Notification, error) {
	path, err := w.resolvePath(uri)
	if err != nil {
		return nil, fmt.Errorf("remove overlay: %w", err)
	}

	id, ok := w.VFS.RemoveFileOverlay(path)
	if ok {
		w.Subs.Remove(int(id))
		w.DB.RemoveFile(int(id))
	}

	return jsonrpc.NewNotification(methodPublishDiagnostics, proto.PublishDiagnosticsParams{
		URI:         string(uri),
		Diagnostics: []proto.Diagnostic{},
	})
}

// ApplyWatcherTask folds a filesystem-watcher observation into the VFS and
// analysis engine, for paths the editor does not have open as an overlay.
// Overlay content always wins: a watcher task for a path with an open
// overlay is a stale racing observation and is ignored. readFile is used to
// load the new content for Discovered/Changed tasks.
//
// Subscription semantics mirror the original add_file/change_file/
// remove_file split: a Discovered path is newly subscribed so it starts
// receiving diagnostic republication, exactly as opening it as an overlay
// would (add_sub); a Changed path is already subscribed and its
// subscription is left alone (change_file never touches subs); a Removed
// path is unsubscribed and, regardless of whether it was tracked, an
// empty-diagnostics publish is returned so the client clears any stale
// marks the normal republication pass would no longer reach now that the
// path has dropped out of the subscription set.
func (w *World) ApplyWatcherTask(task vfs.Task, readFile func(string) (string, error)) (*jsonrpc.Notification, error) {
	if w.VFS.IsOverlayOwned(task.Path) {
		return nil, nil
	}

	switch task.Kind {
	case vfs.TaskDiscovered:
		text, err := readFile(task.Path)
		if err != nil {
			return nil, fmt.Errorf("apply watcher task: reading %s: %w", task.Path, err)
		}
		id, ok := w.VFS.SetDiskFile(task.Path, text)
		if ok {
			w.Subs.Add(int(id))
			w.DB.SetFileText(int(id), text)
		}
		return nil, nil
	case vfs.TaskChanged:
		text, err := readFile(task.Path)
		if err != nil {
			return nil, fmt.Errorf("apply watcher task: reading %s: %w", task.Path, err)
		}
		id, ok := w.VFS.SetDiskFile(task.Path, text)
		if ok {
			w.DB.SetFileText(int(id), text)
		}
		return nil, nil
	case vfs.TaskRemoved:
		id, ok := w.VFS.RemoveDiskFile(task.Path)
		if ok {
			w.Subs.Remove(int(id))
			w.DB.RemoveFile(int(id))
		}
		return jsonrpc.NewNotification(methodPublishDiagnostics, proto.PublishDiagnosticsParams{
			URI:         string(vfs.PathToUri(task.Path)),
			Diagnostics: []proto.Diagnostic{},
		})
	default:
		return nil, nil
	}
}
