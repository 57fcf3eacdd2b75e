package cache

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/scttfrdmn/tilecache/pkg/align"
	"github.com/scttfrdmn/tilecache/pkg/align/testalign"
	"github.com/scttfrdmn/tilecache/pkg/config"
	"github.com/scttfrdmn/tilecache/pkg/pestats"
	"github.com/stretchr/testify/assert"
)

func newTestLoader(records []align.Alignment) *Loader {
	reader := &fakeReader{records: records, hasIndex: true}
	coord := NewCoordinator(func() float64 { return 1.0 })
	return &Loader{Reader: reader, Coordinator: coord, TestMode: true}
}

func loadOneTile(t *testing.T, l *Loader, cfg config.Snapshot) *Tile {
	t.Helper()
	tile := NewTile("chr1", 0, 0, 16000, 500, align.BisulfiteContextNone, rand.New(rand.NewSource(1)))
	cancelled, err := l.Load("chr1", []*Tile{tile}, 16000, cfg, map[string]*pestats.Stats{}, new(atomic.Bool))
	assert.False(t, cancelled)
	assert.NoError(t, err)
	return tile
}

func pairedMapped(name string, start, end int) *testalign.Fake {
	return &testalign.Fake{
		NameVal:  name,
		StartVal: start,
		EndVal:   end,
		Mapped:   true,
		Paired:   true,
		MateVal:  testalign.FakeMate{MappedVal: false},
	}
}

func pairedUnmapped(name string, mateStart int) *testalign.Fake {
	return &testalign.Fake{
		NameVal: name,
		Paired:  true,
		Mapped:  false,
		MateVal: testalign.FakeMate{MappedVal: true, StartVal: mateStart},
		SeqVal:  "ACGT",
	}
}

func TestLoadStitchesMateSequenceMappedThenUnmapped(t *testing.T) {
	mapped := pairedMapped("r1", 100, 200)
	unmapped := pairedUnmapped("r1", 100)
	l := newTestLoader([]align.Alignment{mapped, unmapped})

	loadOneTile(t, l, config.Default())

	assert.Equal(t, "ACGT", mapped.SeqVal)
}

func TestLoadStitchesMateSequenceUnmappedThenMapped(t *testing.T) {
	unmapped := pairedUnmapped("r1", 100)
	mapped := pairedMapped("r1", 100, 200)
	l := newTestLoader([]align.Alignment{unmapped, mapped})

	loadOneTile(t, l, config.Default())

	assert.Equal(t, "ACGT", mapped.SeqVal)
}

func TestLoadMappedMatesSweepLeavesUnresolvedEntryUntouched(t *testing.T) {
	mapped := pairedMapped("r1", 100, 200)
	l := newTestLoader([]align.Alignment{mapped})

	loadOneTile(t, l, config.Default())

	assert.Empty(t, mapped.SeqVal, "mate sequence can't stitch when the unmapped mate never streams through this load")
}

func TestPassesFilterRejectsUnmapped(t *testing.T) {
	l := newTestLoader(nil)
	rec := &testalign.Fake{Mapped: false}
	assert.False(t, l.passesFilter(rec, config.Default()))
}

func TestPassesFilterRejectsDuplicateUnlessShown(t *testing.T) {
	l := newTestLoader(nil)
	rec := &testalign.Fake{Mapped: true, Duplicate: true}

	cfg := config.Default()
	cfg.ShowDuplicates = false
	assert.False(t, l.passesFilter(rec, cfg))

	cfg.ShowDuplicates = true
	assert.True(t, l.passesFilter(rec, cfg))
}

func TestPassesFilterRejectsVendorFailedWhenConfigured(t *testing.T) {
	l := newTestLoader(nil)
	rec := &testalign.Fake{Mapped: true, VendorFailed: true}

	cfg := config.Default()
	cfg.FilterFailedReads = true
	assert.False(t, l.passesFilter(rec, cfg))

	cfg.FilterFailedReads = false
	assert.True(t, l.passesFilter(rec, cfg))
}

func TestPassesFilterRejectsBelowQualityThreshold(t *testing.T) {
	l := newTestLoader(nil)
	rec := &testalign.Fake{Mapped: true, MapQ: 10}

	cfg := config.Default()
	cfg.QualityThreshold = 20
	assert.False(t, l.passesFilter(rec, cfg))

	cfg.QualityThreshold = 5
	assert.True(t, l.passesFilter(rec, cfg))
}

func TestPassesFilterAppliesReadGroupFilter(t *testing.T) {
	l := newTestLoader(nil)
	rec := &testalign.Fake{Mapped: true, LibraryVal: "libA"}

	cfg := config.Default()
	cfg.ReadGroupFilter = func(a align.Alignment) bool { return a.Library() == "libB" }
	assert.False(t, l.passesFilter(rec, cfg))

	cfg.ReadGroupFilter = func(a align.Alignment) bool { return a.Library() == "libA" }
	assert.True(t, l.passesFilter(rec, cfg))
}

func TestLoadAccumulatesPEStatsPerLibraryOnProperPair(t *testing.T) {
	rec := &testalign.Fake{
		NameVal: "r1", StartVal: 100, EndVal: 200,
		Mapped: true, Paired: true, ProperPairVal: true,
		LibraryVal: "libA", TemplateLenVal: 300,
		MateVal: testalign.FakeMate{MappedVal: true, StartVal: 250},
	}
	l := newTestLoader([]align.Alignment{rec})
	tile := NewTile("chr1", 0, 0, 16000, 500, align.BisulfiteContextNone, rand.New(rand.NewSource(1)))

	peStats := map[string]*pestats.Stats{}
	cancelled, err := l.Load("chr1", []*Tile{tile}, 16000, config.Default(), peStats, new(atomic.Bool))
	assert.False(t, cancelled)
	assert.NoError(t, err)

	stats, ok := peStats["libA"]
	assert.True(t, ok, "a stats bucket should have been created for the pair's library")
	assert.Equal(t, 1, stats.N())
}

func TestLoadAccumulatesPEStatsUnderNullLibraryWhenUnset(t *testing.T) {
	rec := &testalign.Fake{
		NameVal: "r1", StartVal: 100, EndVal: 200,
		Mapped: true, Paired: true, ProperPairVal: true,
		TemplateLenVal: 300,
		MateVal:        testalign.FakeMate{MappedVal: true, StartVal: 250},
	}
	l := newTestLoader([]align.Alignment{rec})
	tile := NewTile("chr1", 0, 0, 16000, 500, align.BisulfiteContextNone, rand.New(rand.NewSource(1)))

	peStats := map[string]*pestats.Stats{}
	_, err := l.Load("chr1", []*Tile{tile}, 16000, config.Default(), peStats, new(atomic.Bool))
	assert.NoError(t, err)

	_, ok := peStats[pestats.NullLibrary]
	assert.True(t, ok)
}
