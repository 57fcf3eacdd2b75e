package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	s := NewStore()
	for i := 0; i < storeCapacity; i++ {
		s.Put(i, &Tile{Index: i})
	}
	assert.Equal(t, storeCapacity, s.Len())

	s.Put(storeCapacity, &Tile{Index: storeCapacity})
	assert.Equal(t, storeCapacity, s.Len())

	_, found := s.Get(0)
	assert.False(t, found, "oldest entry should have been evicted")

	_, found = s.Get(storeCapacity)
	assert.True(t, found)
}

func TestStoreGetRefreshesRecency(t *testing.T) {
	s := NewStore()
	for i := 0; i < storeCapacity; i++ {
		s.Put(i, &Tile{Index: i})
	}

	_, _ = s.Get(0)

	s.Put(storeCapacity, &Tile{Index: storeCapacity})

	_, found := s.Get(0)
	assert.True(t, found, "recently touched entry should survive eviction")

	_, found = s.Get(1)
	assert.False(t, found, "untouched oldest entry should be evicted instead")
}

func TestStoreClearEmptiesEverything(t *testing.T) {
	s := NewStore()
	s.Put(0, &Tile{Index: 0})
	s.Put(1, &Tile{Index: 1})
	s.Clear()
	assert.Equal(t, 0, s.Len())
	_, found := s.Get(0)
	assert.False(t, found)
}
