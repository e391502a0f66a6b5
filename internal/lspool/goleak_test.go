package lspool

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures Wait actually joins every worker goroutine the errgroup
// spawned; a leaked worker here would mean shutdown races ahead of the pool.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
