package loop

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures Run's internal pool and VFS task-flush goroutines are
// fully joined by shutdown before a test returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
