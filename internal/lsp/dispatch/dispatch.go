// Package dispatch implements the pool-backed request dispatcher: a
// builder-style table of method handlers, each run against a read-only
// World snapshot on a bounded worker, whose result or error is translated
// into a JSON-RPC response and handed back to the loop thread as a Task.
package dispatch

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	lsperrors "github.com/ion-lang/ionls/internal/errors"
	"github.com/ion-lang/ionls/internal/jsonrpc"
	"github.com/ion-lang/ionls/internal/lsp/pending"
	"github.com/ion-lang/ionls/internal/lsp/world"
	"github.com/ion-lang/ionls/internal/lspool"
)

// HandlerFunc answers one request against an immutable snapshot. params is
// the request's raw JSON params; the returned value is marshaled as the
// response result.
type HandlerFunc func(snap world.Snapshot, params json.RawMessage) (any, error)

// Dispatcher routes requests by method name to a HandlerFunc, executed on
// the pool. Registration is chainable: On returns the receiver so a table
// can be built up as a single expression, mirroring the typed builder style
// the analysis engine's own request dispatch uses.
type Dispatcher struct {
	pool     *lspool.Pool
	sender   chan<- lspool.Task
	handlers map[string]HandlerFunc
}

// New returns a Dispatcher with an empty handler table. Handler business
// logic (what each LSP method actually computes) is an external collaborator
// per this core's scope; callers register it with On, typically once at
// startup for every method the wired analysis engine supports.
func New(pool *lspool.Pool, sender chan<- lspool.Task) *Dispatcher {
	return &Dispatcher{
		pool:     pool,
		sender:   sender,
		handlers: make(map[string]HandlerFunc),
	}
}

// On registers a handler for method, returning the Dispatcher for chaining.
// A later call for the same method replaces the earlier registration.
func (d *Dispatcher) On(method string, h HandlerFunc) *Dispatcher {
	d.handlers[method] = h
	return d
}

// Handles reports whether method has a registered handler.
func (d *Dispatcher) Handles(method string) bool {
	_, ok := d.handlers[method]
	return ok
}

// Dispatch submits req's handler to the pool if method is known, recording
// req.ID in table as an in-flight request, and returns true. Returns false
// without side effects if no handler is registered for req.Method; the
// caller is responsible for responding with MethodNotFound in that case.
func (d *Dispatcher) Dispatch(req *jsonrpc.Request, snap world.Snapshot, table *pending.Table) bool {
	h, ok := d.handlers[req.Method]
	if !ok {
		return false
	}

	table.Insert(req.ID)
	id := req.ID
	params := req.Params
	d.pool.Go(func() error {
		result, err := h(snap, params)
		resp := toResponse(id, result, err)
		d.sender <- lspool.Respond(resp)
		return nil
	})
	return true
}

// toResponse classifies a handler outcome into the protocol-level response
// shape: an explicit LspError keeps its code, a Cancelled marker becomes
// ContentModified (the client is expected to retry), anything else becomes
// a generic InternalError.
func toResponse(id int64, result any, err error) *jsonrpc.Response {
	if err == nil {
		resp, merr := jsonrpc.NewResponse(id, result)
		if merr != nil {
			return jsonrpc.NewErrorResponse(id, lsperrors.CodeInternalError, merr.Error())
		}
		return resp
	}

	var lspErr *lsperrors.LspError
	if stderrors.As(err, &lspErr) {
		return jsonrpc.NewErrorResponse(id, int64(lspErr.Code), lspErr.Message)
	}
	if lsperrors.IsCancelled(err) {
		return jsonrpc.NewErrorResponse(id, lsperrors.CodeContentModified, "content modified")
	}
	return jsonrpc.NewErrorResponse(id, lsperrors.CodeInternalError, err.Error())
}

// UnmarshalParams decodes a request's raw params into T, for use inside a
// registered HandlerFunc.
func UnmarshalParams[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, fmt.Errorf("missing request params")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decoding params: %w", err)
	}
	return v, nil
}
