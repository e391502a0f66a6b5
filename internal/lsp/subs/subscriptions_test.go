package subs

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddContainsRemove(t *testing.T) {
	s := New()
	assert.False(t, s.Contains(1))

	s.Add(1)
	assert.True(t, s.Contains(1))

	assert.True(t, s.Remove(1))
	assert.False(t, s.Contains(1))

	assert.False(t, s.Remove(1), "removing twice is idempotent and reports absence")
}

func TestSnapshot(t *testing.T) {
	s := New()
	s.Add(3)
	s.Add(1)
	s.Add(2)

	got := s.Snapshot()
	sort.Ints(got)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 3, s.Len())
}

func TestOpenWithoutClose(t *testing.T) {
	// Subscriptions must be exactly the set of FileIds for which an Open
	// without a matching Close has been received.
	s := New()
	s.Add(1) // open
	s.Add(2) // open
	s.Remove(1) // close

	assert.False(t, s.Contains(1))
	assert.True(t, s.Contains(2))
}
