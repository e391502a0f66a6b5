// Package debug provides opt-in diagnostic logging for the server. The
// JSON-RPC transport runs over stdio, so debug output must never land on
// stdout/stderr unless explicitly redirected to a file: any stray byte there
// corrupts the client's framing.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug is a build-time flag:
// go build -ldflags "-X github.com/ion-lang/ionls/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// StdioMode marks that the server is talking JSON-RPC over stdio. While
// true, all debug output is suppressed unless it has been redirected to a
// file via InitLogFile.
var StdioMode = false

var (
	debugOutput io.Writer
	debugFile   *os.File
	debugMutex  sync.Mutex
)

// SetStdioMode toggles stdio protection. Called once at startup.
func SetStdioMode(enabled bool) {
	StdioMode = enabled
}

// SetOutput sets a custom writer for debug output. Pass nil to disable.
func SetOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitLogFile initializes debug logging to a timestamped file under the
// system temp directory and returns its path. Call CloseLogFile when done.
func InitLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "ionls-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("creating debug log directory: %w", err)
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("ionls-%s.log", time.Now().Format("2006-01-02T150405")))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("creating debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseLogFile closes the debug log file if one is open.
func CloseLogFile() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile == nil {
		return nil
	}
	err := debugFile.Close()
	debugFile = nil
	debugOutput = nil
	return err
}

// Enabled reports whether debug output should be produced right now.
func Enabled() bool {
	if EnableDebug == "true" {
		return true
	}
	v := os.Getenv("IONLS_DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Log writes a component-tagged debug line. A no-op unless Enabled() and an
// output writer has been configured (stdio mode with no file configured
// drops the line rather than risking corrupting the wire protocol).
func Log(component, format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// LogLoop logs main-loop turn events.
func LogLoop(format string, args ...interface{}) { Log("LOOP", format, args...) }

// LogVFS logs VFS overlay mutations.
func LogVFS(format string, args ...interface{}) { Log("VFS", format, args...) }

// LogWatcher logs filesystem-watcher activity.
func LogWatcher(format string, args ...interface{}) { Log("WATCH", format, args...) }

// LogPool logs worker-pool dispatch and completion.
func LogPool(format string, args ...interface{}) { Log("POOL", format, args...) }

// LogRPC logs inbound/outbound JSON-RPC traffic.
func LogRPC(format string, args ...interface{}) { Log("RPC", format, args...) }
