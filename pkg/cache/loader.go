package cache

import (
	"errors"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/scttfrdmn/tilecache/pkg/align"
	"github.com/scttfrdmn/tilecache/pkg/areader"
	"github.com/scttfrdmn/tilecache/pkg/config"
	"github.com/scttfrdmn/tilecache/pkg/pestats"
)

// mateCacheCapacity bounds the mapped_mates/unmapped_mates streaming
// mate-sequence reconstruction maps.
const mateCacheCapacity = 1000

// progressInterval is how often (in records) the loader checks memory
// pressure and the cancel flag. TestMode shrinks the sampling of
// memory checks the way IGV's Globals.isTesting() does.
func progressInterval(testMode bool) int {
	if testMode {
		return 100000
	}
	return 1000
}

// Loader drives one range query over the upstream reader and fans
// out records to the tiles it overlaps. Grounded on
// CachingQueryReader.loadTiles.
type Loader struct {
	Reader      areader.Reader
	Coordinator *Coordinator
	TestMode    bool
	Logger      *Logger

	// PairedSeen, if set, is latched true the first time a paired
	// record is observed, backing Cache.IsPairedEnd.
	PairedSeen *atomic.Bool
}

func (l *Loader) logger() *Logger {
	if l.Logger == nil {
		return NewLogger(nil)
	}
	return l.Logger
}

// Load consumes one contiguous range query spanning
// [tiles[0].Start, tiles[last].End) and fans each passing record out
// to every tile it overlaps. tileSize is the tile size in bases used
// for fan-out index arithmetic; peStats accumulates per-library
// insert-size stats across this load. Returns cancelled=true if the
// load was aborted (by cooperative cancel or memory pressure); in
// that case no tiles are marked loaded or published.
func (l *Loader) Load(sequence string, tiles []*Tile, tileSize int, cfg config.Snapshot, peStats map[string]*pestats.Stats, cancel *atomic.Bool) (cancelled bool, err error) {
	if l.Coordinator.CorruptIndex() {
		return true, Cancelled
	}

	rangeStart := tiles[0].Start
	rangeEnd := tiles[len(tiles)-1].End
	l.logger().loadStarted(sequence, tiles[0].Index, tiles[len(tiles)-1].Index)

	it, err := l.Reader.Query(sequence, rangeStart, rangeEnd, false)
	if err != nil {
		return l.handleReaderError(err)
	}
	defer it.Close()

	mappedMates, _ := lru.New[string, align.Alignment](mateCacheCapacity)
	unmappedMates, _ := lru.New[string, string](mateCacheCapacity)

	count := 0
	interval := progressInterval(l.TestMode)

	for it.Next() {
		if cancel.Load() {
			return true, Cancelled
		}

		rec := it.Record()
		name := rec.ReadName()

		if rec.IsPaired() {
			if l.PairedSeen != nil {
				l.PairedSeen.Store(true)
			}
			if rec.IsMapped() {
				if !rec.Mate().IsMapped() {
					if seq, ok := unmappedMates.Get(name); ok {
						rec.SetMateSequence(seq)
						unmappedMates.Remove(name)
						mappedMates.Remove(name)
					} else {
						mappedMates.Add(name, rec)
					}
				}
			} else if rec.Mate().IsMapped() {
				if mappedMate, ok := mappedMates.Get(name); ok {
					mappedMate.SetMateSequence(rec.ReadSequence())
					unmappedMates.Remove(name)
					mappedMates.Remove(name)
				} else {
					unmappedMates.Add(name, rec.ReadSequence())
				}
			}
		}

		if !l.passesFilter(rec, cfg) {
			continue
		}

		idx0 := (rec.Start() - rangeStart) / tileSize
		if idx0 < 0 {
			idx0 = 0
		}
		idx1 := (rec.End() - rangeStart) / tileSize
		if idx1 > len(tiles)-1 {
			idx1 = len(tiles) - 1
		}
		for i := idx0; i <= idx1; i++ {
			tiles[i].AddRecord(rec)
		}

		count++
		if count%interval == 0 {
			l.logger().progress(sequence, count)
			if cancel.Load() {
				return true, Cancelled
			}
			if l.Coordinator.checkMemory() {
				l.logger().cancelled(sequence)
				return true, Cancelled
			}
		}

		if rec.IsPaired() && rec.IsProperPair() {
			lib := rec.Library()
			if lib == "" {
				lib = pestats.NullLibrary
			}
			stats, ok := peStats[lib]
			if !ok {
				stats = pestats.New(lib)
				peStats[lib] = stats
			}
			stats.Update(rec.TemplateLength())
		}
	}

	if err := it.Err(); err != nil {
		return l.handleReaderError(err)
	}

	for _, name := range mappedMates.Keys() {
		mappedMate, ok := mappedMates.Get(name)
		if !ok {
			continue
		}
		if seq, ok := unmappedMates.Get(mappedMate.ReadName()); ok {
			mappedMate.SetMateSequence(seq)
		}
	}

	for _, stats := range peStats {
		stats.Compute(cfg.MinInsertSizePercentile, cfg.MaxInsertSizePercentile)
	}

	for _, t := range tiles {
		t.SetLoaded()
	}

	return false, nil
}

// passesFilter applies the non-sampling filters. Filtered records
// never reach counts, splice, or the sampler.
func (l *Loader) passesFilter(rec align.Alignment, cfg config.Snapshot) bool {
	if !rec.IsMapped() {
		return false
	}
	if rec.IsDuplicate() && !cfg.ShowDuplicates {
		return false
	}
	if rec.IsVendorFailedRead() && cfg.FilterFailedReads {
		return false
	}
	if rec.MappingQuality() < cfg.QualityThreshold {
		return false
	}
	if cfg.ReadGroupFilter != nil && !cfg.ReadGroupFilter(rec) {
		return false
	}
	return true
}

// handleReaderError classifies an error from the reader: a corrupt
// index sets the process-wide sticky latch and reports cancelled;
// anything else is wrapped as a fatal data-load error.
func (l *Loader) handleReaderError(err error) (cancelled bool, wrapped error) {
	var corrupt *areader.CorruptIndexError
	if errors.As(err, &corrupt) {
		l.Coordinator.SetCorruptIndex()
		l.logger().corruptIndex(err)
		return true, Cancelled
	}
	return false, fmt.Errorf("tilecache: data load error: %w", &ReaderFaultError{Err: err})
}
