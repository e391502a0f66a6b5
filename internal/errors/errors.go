// Package errors defines the error taxonomy shared by the dispatch core:
// protocol-level LSP errors, the cancellation marker the analysis engine
// raises when a snapshot goes stale, and the handful of conditions the main
// loop treats as fatal.
package errors

import (
	"fmt"

	stderrors "errors"
)

// LSP error codes used by the dispatcher when translating handler outcomes
// into JSON-RPC responses. Values match the Language Server Protocol spec.
const (
	CodeMethodNotFound    = -32601
	CodeInternalError     = -32603
	CodeRequestCancelled  = -32800
	CodeContentModified   = -32801
)

// LspError is a protocol-level error carrying an explicit JSON-RPC error
// code and message. Handlers return this when they want to control the
// exact code sent to the client instead of falling back to InternalError.
type LspError struct {
	Code    int
	Message string
}

// NewLspError builds an LspError with the given code and message.
func NewLspError(code int, message string) *LspError {
	return &LspError{Code: code, Message: message}
}

func (e *LspError) Error() string {
	return fmt.Sprintf("LSP request failed with %d: %s", e.Code, e.Message)
}

// Cancelled is the marker error a snapshot read raises once it has been
// superseded by a newer World mutation. The pool dispatcher recognizes it
// (via errors.As) and translates it to a ContentModified response instead
// of InternalError.
type Cancelled struct {
	Reason string
}

// NewCancelled builds a Cancelled error, optionally carrying a reason for
// logs; the dispatcher discards the reason when producing the client-facing
// response.
func NewCancelled(reason string) *Cancelled {
	return &Cancelled{Reason: reason}
}

func (e *Cancelled) Error() string {
	if e.Reason == "" {
		return "operation cancelled: snapshot superseded"
	}
	return fmt.Sprintf("operation cancelled: %s", e.Reason)
}

// IsCancelled reports whether err (or anything it wraps) is a Cancelled
// marker.
func IsCancelled(err error) bool {
	var c *Cancelled
	return stderrors.As(err, &c)
}

// TransportError marks a fatal failure of the client message channel: the
// loop cannot continue serving once the client has gone away mid-session.
type TransportError struct {
	Underlying error
}

func NewTransportError(err error) *TransportError {
	return &TransportError{Underlying: err}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client exited without shutdown: %v", e.Underlying)
}

func (e *TransportError) Unwrap() error { return e.Underlying }

// VFSError marks a fatal failure of the VFS task channel.
type VFSError struct {
	Underlying error
}

func NewVFSError(err error) *VFSError {
	return &VFSError{Underlying: err}
}

func (e *VFSError) Error() string {
	return fmt.Sprintf("vfs watcher died: %v", e.Underlying)
}

func (e *VFSError) Unwrap() error { return e.Underlying }

// ShutdownError reports a non-fatal failure encountered while tearing down
// a background collaborator (the filesystem watcher or the workspace
// loader). Teardown continues regardless; the error is only surfaced to the
// caller of the main loop.
type ShutdownError struct {
	Component  string
	Underlying error
}

func NewShutdownError(component string, err error) *ShutdownError {
	return &ShutdownError{Component: component, Underlying: err}
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("%s shutdown failed: %v", e.Component, e.Underlying)
}

func (e *ShutdownError) Unwrap() error { return e.Underlying }
