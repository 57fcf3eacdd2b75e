// Package cache implements the tiled, depth-limited alignment cache:
// lazy per-tile loading from an indexed alignment reader, a streaming
// reservoir sampler that caps displayed depth while keeping coverage
// counts exact, and a cooperative cancellation protocol driven by
// host memory pressure. Grounded on
// org.broad.igv.sam.CachingQueryReader.
package cache

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/scttfrdmn/tilecache/pkg/areader"
	"github.com/scttfrdmn/tilecache/pkg/config"
	"github.com/scttfrdmn/tilecache/pkg/pestats"
)

// visibilityHysteresisFactor is the ratio threshold beyond which a
// visibility-window change invalidates the whole cache.
const visibilityHysteresisFactor = 2.0

// Cache is the per-source façade (one per opened alignment source),
// equivalent to one CachingQueryReader instance. It owns one Store,
// registers with a Coordinator for cross-instance broadcast, and
// serves Query by delegating to a Planner/Loader pair.
type Cache struct {
	reader      areader.Reader
	coordinator *Coordinator
	registryID  uuid.UUID

	store   *Store
	planner *Planner
	loader  *Loader

	rng *rand.Rand

	cancel atomic.Bool

	maxVisibleRangeKB float64
	sequence          string

	testMode      bool
	pairedEndSeen atomic.Bool
}

// Options configures a new Cache.
type Options struct {
	// Rand seeds the sampler's pseudo-random generator. If nil, a
	// generator seeded from wall-clock time is used.
	Rand *rand.Rand

	// TestMode widens the memory/progress check interval (every
	// 100,000 records instead of every 1,000) the way IGV's
	// Globals.isTesting() does.
	TestMode bool

	// Logger receives structured diagnostics from the loader.
	Logger *Logger
}

// New constructs a Cache over reader, registering it with
// coordinator for visibility-window broadcast and memory-pressure
// cancel fan-out. Returns a *MissingIndexError if reader has no
// index: such a cache cannot serve Query.
func New(reader areader.Reader, coordinator *Coordinator, cfg config.Snapshot, opts Options) (*Cache, error) {
	if !reader.HasIndex() {
		return nil, &MissingIndexError{}
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c := &Cache{
		reader:            reader,
		coordinator:       coordinator,
		store:             NewStore(),
		rng:               rng,
		maxVisibleRangeKB: cfg.MaxVisibleRangeKB,
		testMode:          opts.TestMode,
	}
	c.loader = &Loader{Reader: reader, Coordinator: coordinator, TestMode: opts.TestMode, Logger: opts.Logger, PairedSeen: &c.pairedEndSeen}
	c.planner = &Planner{Store: c.store, Loader: c.loader}
	c.registryID = coordinator.register(c)

	return c, nil
}

// Close deregisters the cache from its coordinator. It does not close
// the underlying reader, which the caller still owns.
func (c *Cache) Close() {
	c.coordinator.unregister(c.registryID)
}

// Query serves one viewer interval. maxReadDepth is
// the display depth the viewer requested; peStats accumulates
// per-library insert-size statistics across this and prior queries on
// the same sequence.
func (c *Cache) Query(sequence string, start, end, maxReadDepth int, cfg config.Snapshot, peStats map[string]*pestats.Stats) (*TiledIterator, error) {
	if c.coordinator.CorruptIndex() {
		return NewTiledIterator(nil), nil
	}

	if sequence != c.sequence {
		c.store.Clear()
		c.sequence = sequence
	}

	if cfg.MaxVisibleRangeKB != c.maxVisibleRangeKB {
		c.updateVisibilityWindow(cfg.MaxVisibleRangeKB)
	}

	sized := cfg
	sized.MaxVisibleRangeKB = c.maxVisibleRangeKB
	tileSize := sized.TileSizeBases(sequence)

	res, _ := c.planner.Query(sequence, start, end, tileSize, maxReadDepth, cfg.BisulfiteContext, cfg, peStats, c.rng, &c.cancel)
	c.cancel.Store(false)

	return NewTiledIterator(res.Records), nil
}

// IsPairedEnd reports whether any alignment observed so far by this
// cache, across all loads and sequences, is part of a pair, mirroring
// CachingQueryReader.isPairedEnd's running flag.
func (c *Cache) IsPairedEnd() bool {
	return c.pairedEndSeen.Load()
}

// updateVisibilityWindow applies the hysteresis rule: only when the
// ratio of newMaxVisibleRangeKB to the current value crosses 2x or
// falls below 0.5x does the cache adopt the new value (and with it a
// new tile size) and discard the entire store. Smaller changes keep
// the current tile size and the cached tiles.
func (c *Cache) updateVisibilityWindow(newMaxVisibleRangeKB float64) {
	old := c.maxVisibleRangeKB

	invalidate := false
	if old > 0 {
		ratio := newMaxVisibleRangeKB / old
		if ratio > visibilityHysteresisFactor || ratio < 1/visibilityHysteresisFactor {
			invalidate = true
		}
	}
	if old <= 0 || invalidate {
		c.maxVisibleRangeKB = newMaxVisibleRangeKB
	}
	if invalidate {
		c.store.Clear()
	}
	c.loader.logger().visibilityChanged(old, newMaxVisibleRangeKB, invalidate)
}

