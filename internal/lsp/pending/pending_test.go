package pending

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertContainsRemove(t *testing.T) {
	table := New()
	assert.False(t, table.Contains(7))

	table.Insert(7)
	assert.True(t, table.Contains(7))
	assert.Equal(t, 1, table.Len())

	assert.True(t, table.Remove(7))
	assert.False(t, table.Contains(7))
}

func TestRemove_Idempotent(t *testing.T) {
	table := New()
	table.Insert(1)
	assert.True(t, table.Remove(1))
	assert.False(t, table.Remove(1))
}

func TestInsert_DuplicatePanics(t *testing.T) {
	table := New()
	table.Insert(1)

	assert.Panics(t, func() {
		table.Insert(1)
	})
}

func TestNoDuplicates(t *testing.T) {
	table := New()
	for _, id := range []int64{1, 2, 3} {
		table.Insert(id)
	}
	assert.Equal(t, 3, table.Len())
	assert.ElementsMatch(t, []int64{1, 2, 3}, table.Snapshot())
}
