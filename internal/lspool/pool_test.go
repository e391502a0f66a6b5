package lspool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_BoundsConcurrency(t *testing.T) {
	p := New(2)

	var running int32
	var maxObserved int32
	release := make(chan struct{})

	for i := 0; i < 5; i++ {
		p.Go(func() error {
			n := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&maxObserved)
				if n <= old || atomic.CompareAndSwapInt32(&maxObserved, old, n) {
					break
				}
			}
			<-release
			atomic.AddInt32(&running, -1)
			return nil
		})
	}

	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxObserved), int32(2))

	close(release)
	assert.NoError(t, p.Wait())
}

func TestRespondAndNotify(t *testing.T) {
	task := Respond(nil)
	assert.Equal(t, KindRespond, task.Kind)

	task = Notify(nil)
	assert.Equal(t, KindNotify, task.Kind)
}
