package loop

import "github.com/ion-lang/ionls/internal/jsonrpc"

// Outbound is the single sender of framed messages to the client; all
// egress passes through it. Implementations must serialize concurrent
// writes if called from more than the loop thread (this core only ever
// calls it from the loop thread itself).
type Outbound interface {
	SendResponse(*jsonrpc.Response) error
	SendNotification(*jsonrpc.Notification) error
	SendRequest(*jsonrpc.Request) error
}

// WriterOutbound adapts a jsonrpc.Writer (the stdio transport) to Outbound.
type WriterOutbound struct {
	w *jsonrpc.Writer
}

// NewWriterOutbound wraps w as an Outbound.
func NewWriterOutbound(w *jsonrpc.Writer) *WriterOutbound {
	return &WriterOutbound{w: w}
}

func (o *WriterOutbound) SendResponse(r *jsonrpc.Response) error         { return o.w.WriteResponse(r) }
func (o *WriterOutbound) SendNotification(n *jsonrpc.Notification) error { return o.w.WriteNotification(n) }
func (o *WriterOutbound) SendRequest(r *jsonrpc.Request) error           { return o.w.WriteRequest(r) }
