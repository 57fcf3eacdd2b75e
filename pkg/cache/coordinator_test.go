package cache

import (
	"math/rand"
	"testing"

	"github.com/scttfrdmn/tilecache/pkg/align"
	"github.com/scttfrdmn/tilecache/pkg/align/testalign"
	"github.com/scttfrdmn/tilecache/pkg/areader"
	"github.com/scttfrdmn/tilecache/pkg/config"
	"github.com/scttfrdmn/tilecache/pkg/pestats"
	"github.com/stretchr/testify/assert"
)

func newCacheForTest(t *testing.T, coord *Coordinator, records []align.Alignment) *Cache {
	reader := &fakeReader{records: records, hasIndex: true}
	c, err := New(reader, coord, config.Default(), Options{Rand: rand.New(rand.NewSource(1)), TestMode: true})
	assert.NoError(t, err)
	return c
}

func TestNewRejectsReaderWithoutIndex(t *testing.T) {
	coord := NewCoordinator(func() float64 { return 1.0 })
	_, err := New(&fakeReader{hasIndex: false}, coord, config.Default(), Options{})
	assert.Error(t, err)
	var missing *MissingIndexError
	assert.ErrorAs(t, err, &missing)
}

func TestCheckMemoryClearsCachesOnFirstLowReading(t *testing.T) {
	calls := 0
	probe := func() float64 {
		calls++
		if calls == 1 {
			return 0.1
		}
		return 0.9
	}
	coord := NewCoordinator(probe)
	c := newCacheForTest(t, coord, []align.Alignment{testalign.New("a", 0, 10)})

	_, err := c.Query("chr1", 0, 16000, 500, config.Default(), map[string]*pestats.Stats{})
	assert.NoError(t, err)

	cancelled := coord.checkMemory()
	assert.False(t, cancelled, "first low reading should recover after clearing caches")
	assert.Equal(t, 0, c.store.Len(), "store should have been cleared by the recovery attempt")
}

func TestCheckMemoryCancelsReadersOnSecondLowReading(t *testing.T) {
	probe := func() float64 { return 0.05 }
	coord := NewCoordinator(probe)
	c := newCacheForTest(t, coord, []align.Alignment{testalign.New("a", 0, 10)})

	cancelled := coord.checkMemory()
	assert.True(t, cancelled)
	assert.True(t, c.cancel.Load())
}

func TestCorruptIndexLatchShortCircuitsFutureLoads(t *testing.T) {
	coord := NewCoordinator(func() float64 { return 1.0 })
	reader := &fakeReader{hasIndex: true, queryErr: &areader.CorruptIndexError{Err: assert.AnError}}
	c, err := New(reader, coord, config.Default(), Options{Rand: rand.New(rand.NewSource(1)), TestMode: true})
	assert.NoError(t, err)

	it, err := c.Query("chr1", 0, 16000, 500, config.Default(), map[string]*pestats.Stats{})
	assert.NoError(t, err)
	assert.False(t, it.Next())
	assert.True(t, coord.CorruptIndex())

	reader.queryCount = 0
	it2, err := c.Query("chr1", 0, 16000, 500, config.Default(), map[string]*pestats.Stats{})
	assert.NoError(t, err)
	assert.False(t, it2.Next())
	assert.Equal(t, 0, reader.queryCount, "reader must not be re-invoked once the corrupt-index latch is set")
}

func TestBroadcastVisibilityChangedInvalidatesBeyondHysteresis(t *testing.T) {
	coord := NewCoordinator(func() float64 { return 1.0 })
	c := newCacheForTest(t, coord, []align.Alignment{testalign.New("a", 0, 10)})
	_, _ = c.Query("chr1", 0, 15999, 500, config.Default(), map[string]*pestats.Stats{})
	assert.Equal(t, 1, c.store.Len())

	coord.BroadcastVisibilityChanged(64)

	assert.Equal(t, 0, c.store.Len(), "4x visibility change should invalidate the store")
}

func TestUnregisterRemovesFromLiveSet(t *testing.T) {
	coord := NewCoordinator(func() float64 { return 1.0 })
	c := newCacheForTest(t, coord, nil)
	assert.Len(t, coord.live(), 1)
	c.Close()
	assert.Len(t, coord.live(), 0)
}
