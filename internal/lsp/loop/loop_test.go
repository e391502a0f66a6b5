package loop

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ion-lang/ionls/internal/config"
	"github.com/ion-lang/ionls/internal/engine"
	"github.com/ion-lang/ionls/internal/jsonrpc"
	"github.com/ion-lang/ionls/internal/lsp/dispatch"
	"github.com/ion-lang/ionls/internal/lsp/world"
	"github.com/ion-lang/ionls/internal/lspool"
)

type fakeOutbound struct {
	responses     chan *jsonrpc.Response
	notifications chan *jsonrpc.Notification
	requests      chan *jsonrpc.Request
}

func newFakeOutbound() *fakeOutbound {
	return &fakeOutbound{
		responses:     make(chan *jsonrpc.Response, 32),
		notifications: make(chan *jsonrpc.Notification, 32),
		requests:      make(chan *jsonrpc.Request, 32),
	}
}

func (f *fakeOutbound) SendResponse(r *jsonrpc.Response) error {
	f.responses <- r
	return nil
}

func (f *fakeOutbound) SendNotification(n *jsonrpc.Notification) error {
	f.notifications <- n
	return nil
}

func (f *fakeOutbound) SendRequest(r *jsonrpc.Request) error {
	f.requests <- r
	return nil
}

func newFixture(t *testing.T) (*Loop, *fakeOutbound, chan jsonrpc.Inbound) {
	t.Helper()
	cfg := &config.Config{
		Project: config.Project{Root: "/ws"},
		Watch:   config.Watch{Glob: "**/*.ion"},
	}
	w := world.New(engine.NewFakeDatabase(), []string{"/ws"})
	pool := lspool.New(2)
	taskCh := make(chan lspool.Task, 16)
	d := dispatch.New(pool, taskCh)
	d.On("ionls/ping", func(world.Snapshot, json.RawMessage) (any, error) {
		return map[string]bool{"pong": true}, nil
	})
	out := newFakeOutbound()
	readFile := func(string) (string, error) { return "", nil }
	l := New(cfg, w, pool, d, readFile, taskCh, out)
	msgCh := make(chan jsonrpc.Inbound, 8)
	return l, out, msgCh
}

func TestLoop_RegistersWatcherRespondsAndShutsDown(t *testing.T) {
	l, out, msgCh := newFixture(t)
	loader := engine.NewFakeLoader()

	done := make(chan error, 1)
	go func() { done <- l.Run(msgCh, loader, "/ws") }()

	select {
	case req := <-out.requests:
		assert.Equal(t, registerWatcherID, req.ID)
		assert.Equal(t, methodRegisterCapability, req.Method)
	case <-time.After(2 * time.Second):
		t.Fatal("did not observe watcher registration request")
	}

	msgCh <- jsonrpc.Inbound{Request: &jsonrpc.Request{ID: 1, Method: "ionls/ping"}}
	select {
	case resp := <-out.responses:
		assert.Equal(t, int64(1), resp.ID)
		assert.Nil(t, resp.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("did not observe ping response")
	}

	msgCh <- jsonrpc.Inbound{Request: &jsonrpc.Request{ID: 2, Method: methodShutdown}}
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not shut down")
	}
}

func TestLoop_UnknownMethodGetsMethodNotFound(t *testing.T) {
	l, out, msgCh := newFixture(t)
	loader := engine.NewFakeLoader()

	done := make(chan error, 1)
	go func() { done <- l.Run(msgCh, loader, "/ws") }()
	<-out.requests // watcher registration

	msgCh <- jsonrpc.Inbound{Request: &jsonrpc.Request{ID: 5, Method: "ionls/nonexistent"}}
	select {
	case resp := <-out.responses:
		require.NotNil(t, resp.Error)
		assert.Equal(t, int64(-32601), resp.Error.Code)
	case <-time.After(2 * time.Second):
		t.Fatal("did not observe method-not-found response")
	}

	msgCh <- jsonrpc.Inbound{Request: &jsonrpc.Request{ID: 6, Method: methodShutdown}}
	<-done
}

func TestLoop_DidOpenTriggersDiagnosticsRepublish(t *testing.T) {
	l, out, msgCh := newFixture(t)
	loader := engine.NewFakeLoader()

	done := make(chan error, 1)
	go func() { done <- l.Run(msgCh, loader, "/ws") }()
	<-out.requests // watcher registration

	openParams := json.RawMessage(`{"textDocument":{"uri":"file:///a.ion","languageId":"ion","version":1,"text":"hi"}}`)
	msgCh <- jsonrpc.Inbound{Notification: &jsonrpc.Notification{Method: "textDocument/didOpen", Params: openParams}}

	select {
	case notif := <-out.notifications:
		assert.Equal(t, "textDocument/publishDiagnostics", notif.Method)
	case <-time.After(2 * time.Second):
		t.Fatal("did not observe diagnostics republication after didOpen")
	}

	msgCh <- jsonrpc.Inbound{Request: &jsonrpc.Request{ID: 9, Method: methodShutdown}}
	<-done
}
