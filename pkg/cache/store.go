package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// storeCapacity is the TileStore's fixed bounded capacity.
const storeCapacity = 10

// Store is a bounded LRU mapping from tile index to tile, capacity 10,
// cleared wholesale on reference-sequence switch or visibility-window
// invalidation. Grounded on CachingQueryReader's chrCache map, rebuilt
// here over hashicorp/golang-lru/v2 for real LRU eviction semantics.
type Store struct {
	lru *lru.Cache[int, *Tile]
}

// NewStore allocates an empty, 10-entry-capacity tile store.
func NewStore() *Store {
	l, err := lru.New[int, *Tile](storeCapacity)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// storeCapacity never is.
		panic(err)
	}
	return &Store{lru: l}
}

// Get returns the tile at index, marking it recently used.
func (s *Store) Get(index int) (*Tile, bool) {
	return s.lru.Get(index)
}

// Put inserts or replaces the tile at index, evicting the
// least-recently-used entry if the store is at capacity.
func (s *Store) Put(index int, t *Tile) {
	s.lru.Add(index, t)
}

// Clear empties the store atomically, for a reference-sequence switch
// or a visibility-window invalidation.
func (s *Store) Clear() {
	s.lru.Purge()
}

// Len returns the number of tiles currently cached (never exceeds
// storeCapacity).
func (s *Store) Len() int {
	return s.lru.Len()
}
