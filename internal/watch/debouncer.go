package watch

import (
	"sync"
	"time"

	"github.com/ion-lang/ionls/internal/lsp/vfs"
)

// debouncer batches filesystem events per path over a fixed window, keeping
// only the latest kind observed for each path before flushing.
type debouncer struct {
	mu     sync.Mutex
	events map[string]vfs.TaskKind
	window time.Duration
	timer  *time.Timer
	flush  func(map[string]vfs.TaskKind)
}

func newDebouncer(window time.Duration, flush func(map[string]vfs.TaskKind)) *debouncer {
	return &debouncer{
		events: make(map[string]vfs.TaskKind),
		window: window,
		flush:  flush,
	}
}

func (d *debouncer) add(path string, kind vfs.TaskKind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.events[path] = kind
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.doFlush)
}

func (d *debouncer) doFlush() {
	d.mu.Lock()
	events := d.events
	d.events = make(map[string]vfs.TaskKind)
	d.mu.Unlock()

	if len(events) == 0 {
		return
	}
	d.flush(events)
}

// run blocks until done is closed. Pending events at shutdown are
// intentionally dropped rather than flushed, since the VFS they would be
// posted to is being torn down concurrently.
func (d *debouncer) run(done <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	<-done
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]vfs.TaskKind)
	d.mu.Unlock()
}
