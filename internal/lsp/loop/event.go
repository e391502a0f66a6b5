package loop

import (
	"fmt"

	"github.com/ion-lang/ionls/internal/engine"
	"github.com/ion-lang/ionls/internal/jsonrpc"
	"github.com/ion-lang/ionls/internal/lsp/vfs"
	"github.com/ion-lang/ionls/internal/lspool"
)

// Kind tags the four sources the multiplexer fans in.
type Kind int

const (
	KindMsg Kind = iota
	KindTask
	KindVfs
	KindLib
)

// LibResult is the outcome of indexing one library on the pool.
type LibResult struct {
	Req engine.LibraryData
	Err error
}

// Event is the tagged union the multiplexer produces and the main loop
// consumes, one per turn.
type Event struct {
	Kind Kind
	Msg  jsonrpc.Inbound
	Task lspool.Task
	Vfs  vfs.Task
	Lib  LibResult
}

// LogString renders a debug line for ev, or "" to suppress logging. Task and
// Vfs events are high-frequency and are suppressed; Msg and Lib events are
// logged at full detail.
func (ev Event) LogString() string {
	switch ev.Kind {
	case KindMsg:
		switch {
		case ev.Msg.Request != nil:
			return fmt.Sprintf("msg: request %d %s", ev.Msg.Request.ID, ev.Msg.Request.Method)
		case ev.Msg.Notification != nil:
			return fmt.Sprintf("msg: notification %s", ev.Msg.Notification.Method)
		case ev.Msg.Response != nil:
			return fmt.Sprintf("msg: response %d", ev.Msg.Response.ID)
		default:
			return "msg: empty"
		}
	case KindLib:
		if ev.Lib.Err != nil {
			return fmt.Sprintf("lib: %s failed: %v", ev.Lib.Req.Name, ev.Lib.Err)
		}
		return fmt.Sprintf("lib: %s indexed (%d files)", ev.Lib.Req.Name, len(ev.Lib.Req.Files))
	default:
		return ""
	}
}

// nextEvent blocks for whichever of the four sources is ready first. A
// closed msgCh is a transport failure; a closed vfsCh is a VFS failure; both
// are fatal per the core's error taxonomy. taskCh/libCh closing mid-run
// indicates a programming error, since the loop itself owns their lifetime.
func nextEvent(
	msgCh <-chan jsonrpc.Inbound,
	taskCh <-chan lspool.Task,
	vfsCh <-chan vfs.Task,
	libCh <-chan LibResult,
) (Event, error) {
	select {
	case msg, ok := <-msgCh:
		if !ok {
			return Event{}, errClientChannelClosed
		}
		return Event{Kind: KindMsg, Msg: msg}, nil
	case task, ok := <-taskCh:
		if !ok {
			return Event{}, fmt.Errorf("loop: task channel closed unexpectedly")
		}
		return Event{Kind: KindTask, Task: task}, nil
	case vt, ok := <-vfsCh:
		if !ok {
			return Event{}, errVFSChannelClosed
		}
		return Event{Kind: KindVfs, Vfs: vt}, nil
	case lib, ok := <-libCh:
		if !ok {
			return Event{}, fmt.Errorf("loop: library-result channel closed unexpectedly")
		}
		return Event{Kind: KindLib, Lib: lib}, nil
	}
}
