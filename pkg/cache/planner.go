package cache

import (
	"math"
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/scttfrdmn/tilecache/pkg/align"
	"github.com/scttfrdmn/tilecache/pkg/config"
	"github.com/scttfrdmn/tilecache/pkg/counts"
	"github.com/scttfrdmn/tilecache/pkg/pestats"
	"github.com/scttfrdmn/tilecache/pkg/splice"
)

// samplerSafetyMargin is applied to the caller's requested max read
// depth before it is used as the sampler's target, matching the
// planner's "small safety margin above the user-requested display
// depth".
const samplerSafetyMargin = 1.1

// Planner maps a user interval to a tile range and orchestrates cache
// hits and misses, grounded on CachingQueryReader.getTiles/load.
type Planner struct {
	Store  *Store
	Loader *Loader
}

// Result is everything one Query call accumulates across the tile
// range it touched.
type Result struct {
	Records []align.Alignment
	Counts  []counts.Counts
	Splice  []*splice.Junction
}

// Query computes the tile range covering [start, end), serves hits
// from the store, batches contiguous misses to the loader, and
// returns the concatenated, sorted, query-filtered result.
func (p *Planner) Query(sequence string, start, end, tileSize, maxReadDepth int, bisulfite align.BisulfiteContext, cfg config.Snapshot, peStats map[string]*pestats.Stats, rng *rand.Rand, cancel *atomic.Bool) (Result, bool) {
	if start >= end {
		return Result{}, true
	}

	startTile := (start + 1) / tileSize
	endTile := end / tileSize
	samplerDepth := int(math.Ceil(samplerSafetyMargin * float64(maxReadDepth)))

	tiles := make([]*Tile, 0, endTile-startTile+1)
	var pending []*Tile

	flush := func() bool {
		if len(pending) == 0 {
			return true
		}
		cancelled, _ := p.Loader.Load(sequence, pending, tileSize, cfg, peStats, cancel)
		if cancelled {
			pending = nil
			return false
		}
		for _, t := range pending {
			p.Store.Put(t.Index, t)
			tiles = append(tiles, t)
		}
		pending = nil
		return true
	}

	ok := true
	for idx := startTile; idx <= endTile; idx++ {
		if hit, found := p.Store.Get(idx); found {
			if !flush() {
				ok = false
				break
			}
			tiles = append(tiles, hit)
			continue
		}
		tileStart := idx * tileSize
		tileEnd := tileStart + tileSize
		pending = append(pending, NewTile(sequence, idx, tileStart, tileEnd, samplerDepth, bisulfite, rng))
	}
	if ok {
		flush()
	}

	return assemble(tiles, start, end), ok
}

// assemble concatenates the first tile's overlapping records with
// every tile's contained records, collects counts/splice, sorts by
// start (stable), and drops records that don't actually overlap
// [start, end).
func assemble(tiles []*Tile, start, end int) Result {
	var res Result
	if len(tiles) == 0 {
		return res
	}

	res.Records = append(res.Records, tiles[0].OverlappingRecords()...)
	res.Splice = append(res.Splice, tiles[0].SpliceOverlapping()...)
	for _, t := range tiles {
		res.Records = append(res.Records, t.ContainedRecords()...)
		res.Counts = append(res.Counts, t.Counts())
		res.Splice = append(res.Splice, t.SpliceContained()...)
	}

	sort.SliceStable(res.Records, func(i, j int) bool {
		return res.Records[i].Start() < res.Records[j].Start()
	})

	filtered := res.Records[:0]
	for _, r := range res.Records {
		if r.End() <= start || r.Start() >= end {
			continue
		}
		filtered = append(filtered, r)
	}
	res.Records = filtered

	return res
}
