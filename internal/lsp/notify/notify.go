// Package notify implements the notification handler: document lifecycle
// and filesystem-watcher events that mutate World state directly on the
// loop thread, plus eager client-initiated cancellation.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/ion-lang/ionls/internal/debug"
	lsperrors "github.com/ion-lang/ionls/internal/errors"
	"github.com/ion-lang/ionls/internal/jsonrpc"
	"github.com/ion-lang/ionls/internal/lsp/pending"
	"github.com/ion-lang/ionls/internal/lsp/proto"
	"github.com/ion-lang/ionls/internal/lsp/vfs"
	"github.com/ion-lang/ionls/internal/lsp/world"
)

// Method names this handler recognizes. Anything else is logged and
// dropped: the protocol allows servers to ignore notifications they don't
// understand.
const (
	MethodCancel                = "$/cancelRequest"
	MethodDidOpen               = "textDocument/didOpen"
	MethodDidChange             = "textDocument/didChange"
	MethodDidClose              = "textDocument/didClose"
	MethodDidChangeWatchedFiles = "workspace/didChangeWatchedFiles"
)

// Outcome carries the side effects of handling one notification that the
// loop must act on beyond the World mutation already applied.
type Outcome struct {
	// CancelResponse is non-nil when Handle processed a Cancel for an id
	// that was still pending; the loop must enqueue it to the client and
	// ensure any later response for the same id is discarded.
	CancelResponse *jsonrpc.Response
	// Notifications are unsolicited messages to forward to the client,
	// e.g. the empty-diagnostics publish after a document closes.
	Notifications []*jsonrpc.Notification
}

// Handler applies document-lifecycle and watcher notifications to a World.
type Handler struct {
	world    *world.World
	readFile func(path string) (string, error)
}

// New returns a Handler mutating w. readFile loads on-disk content for
// watcher-observed paths; tests can stub it.
func New(w *world.World, readFile func(string) (string, error)) *Handler {
	return &Handler{world: w, readFile: readFile}
}

// Handle dispatches n to the matching step, in the fixed order the original
// server tries them: Cancel, DidOpen, DidChange, DidClose,
// DidChangeWatchedFiles. Returns an error when the notification cannot be
// applied: malformed params, a non-numeric cancel id, an empty
// didChange.contentChanges, or a uri that does not resolve to a local path.
// The main loop treats an error from a Cancel as fatal; any other error is
// logged and the notification dropped.
func (h *Handler) Handle(n *jsonrpc.Notification, table *pending.Table) (Outcome, error) {
	switch n.Method {
	case MethodCancel:
		return h.handleCancel(n.Params, table)
	case MethodDidOpen:
		return h.handleDidOpen(n.Params)
	case MethodDidChange:
		return h.handleDidChange(n.Params)
	case MethodDidClose:
		return h.handleDidClose(n.Params)
	case MethodDidChangeWatchedFiles:
		return h.handleDidChangeWatchedFiles(n.Params)
	default:
		debug.LogLoop("dropping unrecognized notification %q", n.Method)
		return Outcome{}, nil
	}
}

func (h *Handler) handleCancel(raw json.RawMessage, table *pending.Table) (Outcome, error) {
	params, err := decode[proto.CancelParams](raw)
	if err != nil {
		return Outcome{}, fmt.Errorf("notify: cancel: %w", err)
	}

	var id int64
	if err := json.Unmarshal(params.ID, &id); err != nil {
		return Outcome{}, fmt.Errorf("notify: cancel request carries a non-numeric id %s; this server only allocates integer ids", params.ID)
	}

	if !table.Remove(id) {
		return Outcome{}, nil
	}
	return Outcome{CancelResponse: jsonrpc.NewErrorResponse(id, lsperrors.CodeRequestCancelled, "request cancelled")}, nil
}

func (h *Handler) handleDidOpen(raw json.RawMessage) (Outcome, error) {
	params, err := decode[proto.DidOpenTextDocumentParams](raw)
	if err != nil {
		return Outcome{}, fmt.Errorf("notify: did open: %w", err)
	}
	if _, err := h.world.AddOverlay(vfs.Uri(params.TextDocument.URI), params.TextDocument.Text); err != nil {
		return Outcome{}, fmt.Errorf("notify: did open: %w", err)
	}
	return Outcome{}, nil
}

func (h *Handler) handleDidChange(raw json.RawMessage) (Outcome, error) {
	params, err := decode[proto.DidChangeTextDocumentParams](raw)
	if err != nil {
		return Outcome{}, fmt.Errorf("notify: did change: %w", err)
	}
	if len(params.ContentChanges) == 0 {
		return Outcome{}, fmt.Errorf("notify: did change: contentChanges must not be empty")
	}

	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	if err := h.world.ChangeOverlay(vfs.Uri(params.TextDocument.URI), text); err != nil {
		return Outcome{}, fmt.Errorf("notify: did change: %w", err)
	}
	return Outcome{}, nil
}

func (h *Handler) handleDidClose(raw json.RawMessage) (Outcome, error) {
	params, err := decode[proto.DidCloseTextDocumentParams](raw)
	if err != nil {
		return Outcome{}, fmt.Errorf("notify: did close: %w", err)
	}

	notif, err := h.world.RemoveOverlay(vfs.Uri(params.TextDocument.URI))
	if err != nil {
		return Outcome{}, fmt.Errorf("notify: did close: %w", err)
	}
	return Outcome{Notifications: []*jsonrpc.Notification{notif}}, nil
}

func (h *Handler) handleDidChangeWatchedFiles(raw json.RawMessage) (Outcome, error) {
	params, err := decode[proto.DidChangeWatchedFilesParams](raw)
	if err != nil {
		return Outcome{}, fmt.Errorf("notify: did change watched files: %w", err)
	}

	var notifications []*jsonrpc.Notification
	for _, ev := range params.Changes {
		path, convErr := vfs.Uri(ev.URI).ToPath()
		if convErr != nil {
			debug.LogVFS("ignoring watched-file event for non-file uri %s", ev.URI)
			continue
		}

		var kind vfs.TaskKind
		switch ev.Type {
		case proto.FileChangeCreated:
			kind = vfs.TaskDiscovered
		case proto.FileChangeChanged:
			kind = vfs.TaskChanged
		case proto.FileChangeDeleted:
			kind = vfs.TaskRemoved
		default:
			continue
		}

		notif, applyErr := h.world.ApplyWatcherTask(vfs.Task{Kind: kind, Path: path}, h.readFile)
		if applyErr != nil {
			debug.LogVFS("applying watched-file event for %s: %v", path, applyErr)
			continue
		}
		if notif != nil {
			notifications = append(notifications, notif)
		}
	}
	return Outcome{Notifications: notifications}, nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, fmt.Errorf("missing notification params")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decoding params: %w", err)
	}
	return v, nil
}
