package loop

import (
	"encoding/json"
	"fmt"

	"github.com/ion-lang/ionls/internal/debug"
	"github.com/ion-lang/ionls/internal/engine"
	"github.com/ion-lang/ionls/internal/jsonrpc"
	"github.com/ion-lang/ionls/internal/lsp/proto"
)

// registerWatcherID is the fixed reserved request id for the single
// outbound capability-registration request issued at startup, so its
// response can be recognized distinctly from the "otherwise, log" rule
// response ingress applies to every other inbound response.
const registerWatcherID int64 = 0

const (
	methodRegisterCapability    = "client/registerCapability"
	methodDidChangeWatchedFiles = "workspace/didChangeWatchedFiles"
	methodInternalFeedback      = "ionls/internalFeedback"
	methodShutdown              = "shutdown"
)

// loadWorkspace sends wsRoot to loader and waits for its one reply,
// proceeding with zero additional roots (and logging why) either if the
// loader reports an error or if its reply channel closes before it answers.
// Both converge on the same "proceed empty" behavior but are logged with
// distinct messages, since they indicate different failure modes.
func (l *Loop) loadWorkspace(loader engine.WorkspaceLoader, wsRoot string) {
	loader.Request() <- wsRoot

	result, ok := <-loader.Reply()
	switch {
	case !ok:
		debug.LogLoop("workspace loader shut down before replying for %s; proceeding with zero roots", wsRoot)
	case result.Err != nil:
		debug.LogLoop("workspace load failed for %s: %v; proceeding with zero roots", wsRoot, result.Err)
	default:
		l.World.AddRoots(result.Workspace.Roots)
	}
	loader.Shutdown()

	if l.World.RootScanned() && l.Cfg.Feedback.InternalMode {
		l.sendFeedback("workspace loaded")
	}
}

// registerWatcher issues the single outbound capability-registration
// request for the configured watch glob, using the fixed reserved id.
func (l *Loop) registerWatcher() error {
	params := proto.RegistrationParams{
		Registrations: []proto.Registration{{
			ID:     "ionls-watch-files",
			Method: methodDidChangeWatchedFiles,
			RegisterOptions: proto.DidChangeWatchedFilesRegistrationOptions{
				Watchers: []proto.FileSystemWatcher{{GlobPattern: l.Cfg.Watch.Glob}},
			},
		}},
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("loop: marshaling watcher registration: %w", err)
	}
	return l.Out.SendRequest(&jsonrpc.Request{
		JSONRPC: jsonrpc.Version,
		ID:      registerWatcherID,
		Method:  methodRegisterCapability,
		Params:  raw,
	})
}

func (l *Loop) sendFeedback(message string) {
	notif, err := jsonrpc.NewNotification(methodInternalFeedback, message)
	if err != nil {
		debug.LogLoop("failed to build feedback notification: %v", err)
		return
	}
	if err := l.Out.SendNotification(notif); err != nil {
		debug.LogLoop("failed to send feedback notification: %v", err)
	}
}
