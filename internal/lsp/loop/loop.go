// Package loop implements the event multiplexer and main-loop orchestrator:
// startup, the per-turn fanout across client messages, VFS tasks, library
// results and pool task completions, and shutdown.
package loop

import (
	stderrors "errors"
	"fmt"

	"github.com/ion-lang/ionls/internal/config"
	"github.com/ion-lang/ionls/internal/debug"
	"github.com/ion-lang/ionls/internal/engine"
	lsperrors "github.com/ion-lang/ionls/internal/errors"
	"github.com/ion-lang/ionls/internal/jsonrpc"
	"github.com/ion-lang/ionls/internal/lsp/dispatch"
	"github.com/ion-lang/ionls/internal/lsp/notify"
	"github.com/ion-lang/ionls/internal/lsp/proto"
	"github.com/ion-lang/ionls/internal/lsp/vfs"
	"github.com/ion-lang/ionls/internal/lsp/world"
	"github.com/ion-lang/ionls/internal/lspool"
)

var (
	errClientChannelClosed = lsperrors.NewTransportError(fmt.Errorf("client message channel closed"))
	errVFSChannelClosed    = lsperrors.NewVFSError(fmt.Errorf("vfs task channel closed"))
)

const methodPublishDiagnostics = "textDocument/publishDiagnostics"

// Loop owns the loop thread's state and drives Run. Construct with New,
// passing in a Dispatcher that already has its method-to-handler table
// registered (handler business logic is supplied by the caller, not this
// package) and the pluggable hooks for diagnostics/decoration content and
// library indexing, all of which are themselves external collaborators.
type Loop struct {
	World    *world.World
	Dispatch *dispatch.Dispatcher
	Notify   *notify.Handler
	Pool     *lspool.Pool
	Out      Outbound
	Cfg      *config.Config
	ReadFile func(path string) (string, error)

	// IndexLibrary performs the actual library indexing work; if left nil,
	// submitLibraryIndexing substitutes a no-op.
	IndexLibrary func(world.LibraryRequest) (engine.LibraryData, error)
	// Diagnostics computes the diagnostics to publish for fileID against
	// snap; nil means "always publish an empty set" (clearing only).
	Diagnostics func(snap world.Snapshot, fileID vfs.FileID) []proto.Diagnostic
	// Decorations computes an optional decoration-republication
	// notification for fileID; nil means decorations are never sent
	// regardless of Cfg.Feedback.SupportsDecorations.
	Decorations func(snap world.Snapshot, fileID vfs.FileID, uri vfs.Uri) *jsonrpc.Notification

	taskCh chan lspool.Task
	libCh  chan LibResult
}

// New returns a Loop. taskCh must be the same channel the Dispatcher was
// constructed with as its result sender.
func New(cfg *config.Config, w *world.World, pool *lspool.Pool, d *dispatch.Dispatcher, readFile func(string) (string, error), taskCh chan lspool.Task, out Outbound) *Loop {
	return &Loop{
		World:    w,
		Dispatch: d,
		Notify:   notify.New(w, readFile),
		Pool:     pool,
		Out:      out,
		Cfg:      cfg,
		ReadFile: readFile,
		taskCh:   taskCh,
		libCh:    make(chan LibResult, 16),
	}
}

// Run loads the workspace, registers the file watcher, then serves turns
// until the client requests shutdown or a fatal transport/VFS failure
// occurs, returning after draining outstanding work.
func (l *Loop) Run(msgCh <-chan jsonrpc.Inbound, loader engine.WorkspaceLoader, wsRoot string) error {
	l.loadWorkspace(loader, wsRoot)
	if err := l.registerWatcher(); err != nil {
		debug.LogLoop("failed to register watcher capability: %v", err)
	}

	for {
		ev, err := nextEvent(msgCh, l.taskCh, l.World.VFS.Tasks(), l.libCh)
		if err != nil {
			return l.shutdown(err)
		}
		if s := ev.LogString(); s != "" {
			debug.LogLoop("%s", s)
		}

		stateChanged, done, turnErr := l.handleEvent(ev)
		if turnErr != nil {
			return l.shutdown(turnErr)
		}
		if done {
			return l.shutdown(nil)
		}

		for _, req := range l.World.ProcessChanges() {
			l.submitLibraryIndexing(req)
		}

		if stateChanged {
			l.republish()
		}
	}
}

func (l *Loop) handleEvent(ev Event) (stateChanged bool, done bool, err error) {
	switch ev.Kind {
	case KindTask:
		l.forwardTask(ev.Task)
		return false, false, nil
	case KindVfs:
		notif, applyErr := l.World.ApplyWatcherTask(ev.Vfs, l.ReadFile)
		if applyErr != nil {
			debug.LogVFS("applying watcher task for %s: %v", ev.Vfs.Path, applyErr)
			return false, false, nil
		}
		if notif != nil {
			if sendErr := l.Out.SendNotification(notif); sendErr != nil {
				return false, false, lsperrors.NewTransportError(sendErr)
			}
		}
		return true, false, nil
	case KindLib:
		if ev.Lib.Err != nil {
			debug.LogLoop("library %s failed to index: %v", ev.Lib.Req.Name, ev.Lib.Err)
			return false, false, nil
		}
		l.World.AddLib(ev.Lib.Req)
		if l.Cfg.Feedback.InternalMode {
			l.sendFeedback("library loaded")
		}
		return true, false, nil
	case KindMsg:
		return l.handleMsg(ev.Msg)
	default:
		return false, false, fmt.Errorf("loop: unknown event kind %d", ev.Kind)
	}
}

func (l *Loop) handleMsg(in jsonrpc.Inbound) (stateChanged bool, done bool, err error) {
	switch {
	case in.Request != nil:
		return l.handleRequest(in.Request)
	case in.Notification != nil:
		return l.handleNotification(in.Notification)
	case in.Response != nil:
		l.handleResponse(in.Response)
		return false, false, nil
	default:
		return false, false, nil
	}
}

func (l *Loop) handleRequest(req *jsonrpc.Request) (stateChanged bool, done bool, err error) {
	if req.Method == methodShutdown {
		resp, _ := jsonrpc.NewResponse(req.ID, struct{}{})
		if sendErr := l.Out.SendResponse(resp); sendErr != nil {
			return false, false, lsperrors.NewTransportError(sendErr)
		}
		return false, true, nil
	}

	if ok := l.Dispatch.Dispatch(req, l.World.Snapshot(), l.World.Pending); !ok {
		resp := jsonrpc.NewErrorResponse(req.ID, lsperrors.CodeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method))
		if sendErr := l.Out.SendResponse(resp); sendErr != nil {
			return false, false, lsperrors.NewTransportError(sendErr)
		}
	}
	return false, false, nil
}

func (l *Loop) handleNotification(n *jsonrpc.Notification) (stateChanged bool, done bool, err error) {
	outcome, nerr := l.Notify.Handle(n, l.World.Pending)
	if nerr != nil {
		if n.Method == notify.MethodCancel {
			return false, false, fmt.Errorf("loop: fatal notification error: %w", nerr)
		}
		debug.LogLoop("dropping notification %s: %v", n.Method, nerr)
		return false, false, nil
	}

	if outcome.CancelResponse != nil {
		if sendErr := l.Out.SendResponse(outcome.CancelResponse); sendErr != nil {
			return false, false, lsperrors.NewTransportError(sendErr)
		}
	}
	for _, notif := range outcome.Notifications {
		if sendErr := l.Out.SendNotification(notif); sendErr != nil {
			return false, false, lsperrors.NewTransportError(sendErr)
		}
	}

	return n.Method != notify.MethodCancel, false, nil
}

func (l *Loop) handleResponse(resp *jsonrpc.Response) {
	if resp.ID == registerWatcherID {
		if resp.Error != nil {
			debug.LogLoop("watcher capability registration failed: %s", resp.Error.Message)
		} else {
			debug.LogLoop("watcher capability registration acknowledged")
		}
		return
	}
	debug.LogLoop("ignoring unexpected response for id %d", resp.ID)
}

func (l *Loop) forwardTask(t lspool.Task) {
	switch t.Kind {
	case lspool.KindRespond:
		if t.Response == nil {
			return
		}
		if !l.World.Pending.Remove(t.Response.ID) {
			debug.LogLoop("dropping response for id %d: cancelled before completion", t.Response.ID)
			return
		}
		if err := l.Out.SendResponse(t.Response); err != nil {
			debug.LogLoop("failed to send response for id %d: %v", t.Response.ID, err)
		}
	case lspool.KindNotify:
		if t.Notification == nil {
			return
		}
		if err := l.Out.SendNotification(t.Notification); err != nil {
			debug.LogLoop("failed to send notification %s: %v", t.Notification.Method, err)
		}
	}
}

func (l *Loop) submitLibraryIndexing(req world.LibraryRequest) {
	index := l.IndexLibrary
	if index == nil {
		index = func(world.LibraryRequest) (engine.LibraryData, error) { return engine.LibraryData{}, nil }
	}
	l.Pool.Go(func() error {
		lib, err := index(req)
		lib.Name = req.Name
		l.libCh <- LibResult{Req: lib, Err: err}
		return nil
	})
}

// republish schedules diagnostic (and, if enabled, decoration)
// republication for every subscribed file against a fresh snapshot taken
// now, on the pool.
func (l *Loop) republish() {
	snap := l.World.Snapshot()
	ids := l.World.Subs.Snapshot()
	supportsDecorations := l.Cfg.Feedback.SupportsDecorations

	l.Pool.Go(func() error {
		for _, raw := range ids {
			fileID := vfs.FileID(raw)
			path, ok := l.World.VFS.PathFor(fileID)
			if !ok {
				continue
			}
			uri := vfs.PathToUri(path)

			diags := []proto.Diagnostic{}
			if l.Diagnostics != nil {
				diags = l.Diagnostics(snap, fileID)
			}
			notif, err := jsonrpc.NewNotification(methodPublishDiagnostics, proto.PublishDiagnosticsParams{
				URI:         string(uri),
				Diagnostics: diags,
			})
			if err == nil {
				l.taskCh <- lspool.Notify(notif)
			}

			if supportsDecorations && l.Decorations != nil {
				if decNotif := l.Decorations(snap, fileID, uri); decNotif != nil {
					l.taskCh <- lspool.Notify(decNotif)
				}
			}
		}
		return nil
	})
}

func (l *Loop) drainTasks() {
	for {
		select {
		case t, ok := <-l.taskCh:
			if !ok {
				return
			}
			l.forwardTask(t)
		default:
			return
		}
	}
}

func (l *Loop) shutdown(runErr error) error {
	l.drainTasks()
	poolErr := l.Pool.Wait()
	vfsErr := l.World.VFS.Shutdown()
	return stderrors.Join(runErr, poolErr, vfsErr)
}
