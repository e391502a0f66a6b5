// Package proto holds the wire-level parameter and result shapes the
// dispatcher and notification handler marshal/unmarshal. It intentionally
// covers only the subset of the protocol this core speaks; it is not a
// general-purpose protocol binding.
package proto

import "encoding/json"

// Position is a zero-based line/UTF-16-column location in a document.
type Position struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// Range is a half-open [Start, End) span.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// TextEdit replaces the text within Range with NewText.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// TextDocumentIdentifier names a document by its Uri.
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier additionally carries the client's view of
// the document's version, used to detect stale edits.
type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

// TextDocumentItem is the full document payload sent on open.
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// TextDocumentPositionParams locates a position within a document, the
// common prefix of most language-feature requests.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// TextDocumentContentChangeEvent describes one change. This core only
// supports full-document sync, so Range/RangeLength are never populated and
// Text always carries the complete new contents.
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

// DidOpenTextDocumentParams is sent once when a document is opened in the
// editor, installing its initial overlay.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// DidChangeTextDocumentParams is sent on every edit. Each entry in
// ContentChanges is a full-document snapshot; the handler takes the last
// one as the document's new state (matching a client that batches several
// edits into one notification), and an empty slice is a client error.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier   `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// DidCloseTextDocumentParams is sent when a document is closed, removing its
// overlay. The file's content is dropped from the VFS and the analysis
// engine; on-disk content is not reloaded.
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// FileChangeType enumerates the kinds of filesystem-watcher observations the
// client can forward via workspace/didChangeWatchedFiles.
type FileChangeType int

const (
	FileChangeCreated FileChangeType = iota + 1
	FileChangeChanged
	FileChangeDeleted
)

// FileEvent is one entry of a didChangeWatchedFiles notification.
type FileEvent struct {
	URI  string         `json:"uri"`
	Type FileChangeType `json:"type"`
}

// DidChangeWatchedFilesParams batches the file events the client observed on
// paths matching the watcher's registered glob.
type DidChangeWatchedFilesParams struct {
	Changes []FileEvent `json:"changes"`
}

// CancelParams names the request being cancelled. ID may be a number or a
// string on the wire; a string id is a client protocol violation this core
// treats as fatal, since ids it allocates are always integers.
type CancelParams struct {
	ID json.RawMessage `json:"id"`
}

// DiagnosticSeverity mirrors the protocol's four severity levels.
type DiagnosticSeverity int

const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

// Diagnostic is one issue reported against a range of a document.
type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
}

// PublishDiagnosticsParams is the notification payload publishing (or, with
// an empty Diagnostics slice, clearing) a document's diagnostics.
type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Registration is one dynamic capability registration sent to the client
// during startup, keyed by a server-assigned ID.
type Registration struct {
	ID              string      `json:"id"`
	Method          string      `json:"method"`
	RegisterOptions interface{} `json:"registerOptions,omitempty"`
}

// RegistrationParams wraps a batch of Registrations for the
// client/registerCapability request.
type RegistrationParams struct {
	Registrations []Registration `json:"registrations"`
}

// FileSystemWatcher names one glob pattern the client should watch and
// forward matching events for.
type FileSystemWatcher struct {
	GlobPattern string `json:"globPattern"`
}

// DidChangeWatchedFilesRegistrationOptions is the RegisterOptions payload for
// a workspace/didChangeWatchedFiles registration.
type DidChangeWatchedFilesRegistrationOptions struct {
	Watchers []FileSystemWatcher `json:"watchers"`
}
