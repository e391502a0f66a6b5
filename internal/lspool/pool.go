// Package lspool implements the bounded worker pool handlers execute on,
// and the Task shape workers use to send results back to the main loop.
package lspool

import (
	"golang.org/x/sync/errgroup"

	"github.com/ion-lang/ionls/internal/jsonrpc"
)

// Kind distinguishes the two Task shapes: a response addressed to a
// specific pending request id, or an unsolicited notification.
type Kind int

const (
	KindRespond Kind = iota
	KindNotify
)

// Task is produced by workers and consumed by the main loop, which forwards
// it to the outbound-to-client sender.
type Task struct {
	Kind         Kind
	Response     *jsonrpc.Response
	Notification *jsonrpc.Notification
}

// Respond wraps resp as a response Task.
func Respond(resp *jsonrpc.Response) Task {
	return Task{Kind: KindRespond, Response: resp}
}

// Notify wraps n as a notification Task.
func Notify(n *jsonrpc.Notification) Task {
	return Task{Kind: KindNotify, Notification: n}
}

// Pool is a bounded pool of worker goroutines executing handlers against
// read-only snapshots. Default size is 8, matching the spec's default.
type Pool struct {
	group *errgroup.Group
}

const DefaultSize = 8

// New returns a Pool allowing at most size concurrent handler executions.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	g := &errgroup.Group{}
	g.SetLimit(size)
	return &Pool{group: g}
}

// Go submits fn to run on a worker, blocking the caller until a slot is
// free. The first non-nil error any fn returns is reported by Wait;
// protocol-level handler errors are reported via a Task, not this return
// value.
func (p *Pool) Go(fn func() error) {
	p.group.Go(fn)
}

// Wait blocks until all submitted work has completed, joining every
// worker. Call as the first step of shutdown, before tearing down the VFS.
func (p *Pool) Wait() error {
	return p.group.Wait()
}
