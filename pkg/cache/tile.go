package cache

import (
	"math/rand"

	"github.com/scttfrdmn/tilecache/pkg/align"
	"github.com/scttfrdmn/tilecache/pkg/counts"
	"github.com/scttfrdmn/tilecache/pkg/splice"
)

// bucketWidth is the reservoir sampler's sliding bucket width in bases.
const bucketWidth = 10

// currentMatesCap bounds how many window indices are tracked per read
// name while a bucket is open.
const currentMatesCap = 2

// Tile holds one tile's admitted reads, counts, and splice data, and
// runs the per-window reservoir sampler while unloaded. Grounded on
// CachingQueryReader.AlignmentTile.
type Tile struct {
	Sequence string
	Index    int
	Start    int
	End      int
	MaxDepth int

	rand *rand.Rand

	loaded bool

	containedRecords   []align.Alignment
	overlappingRecords []align.Alignment

	counts       counts.Counts
	spliceHelper *splice.Helper

	spliceContained   []*splice.Junction
	spliceOverlapping []*splice.Junction

	windowEnd      int
	samplingProb   float64
	samplingBudget int
	currentWindow  []align.Alignment
	currentMates   map[string][]int
	pairedNames    map[string]struct{}
}

// NewTile constructs an unloaded tile spanning [start, end) on
// sequence, ready to accept records via AddRecord.
func NewTile(sequence string, index, start, end, maxDepth int, bisulfite align.BisulfiteContext, rng *rand.Rand) *Tile {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &Tile{
		Sequence:       sequence,
		Index:          index,
		Start:          start,
		End:            end,
		MaxDepth:       maxDepth,
		rand:           rng,
		counts:         counts.New(start, end, bisulfite),
		spliceHelper:   splice.NewHelper(),
		currentMates:   make(map[string][]int),
		pairedNames:    make(map[string]struct{}),
		windowEnd:      -1,
		samplingProb:   1,
		samplingBudget: maxDepth,
	}
}

// Loaded reports whether the tile has been finalized. Once true the
// tile is immutable.
func (t *Tile) Loaded() bool { return t.loaded }

// ContainedRecords returns reads whose start lies inside the tile.
func (t *Tile) ContainedRecords() []align.Alignment { return t.containedRecords }

// OverlappingRecords returns reads whose start precedes the tile but
// whose end extends into it.
func (t *Tile) OverlappingRecords() []align.Alignment { return t.overlappingRecords }

// Counts returns the tile's per-base coverage sink.
func (t *Tile) Counts() counts.Counts { return t.counts }

// SpliceContained/SpliceOverlapping mirror the contained/overlapping
// record split for splice-junction features, populated on finalize.
func (t *Tile) SpliceContained() []*splice.Junction   { return t.spliceContained }
func (t *Tile) SpliceOverlapping() []*splice.Junction { return t.spliceOverlapping }

// AddRecord feeds one filter-passing alignment through the sampler.
// Must not be called after SetLoaded.
func (t *Tile) AddRecord(a align.Alignment) {
	beta := 1.0 / float64(t.MaxDepth)

	if a.Start() >= t.windowEnd {
		t.emptyBucket()
		t.samplingProb = 1
		t.samplingBudget = t.MaxDepth
		t.windowEnd = a.Start() + bucketWidth
	}

	t.counts.Inc(a)
	t.spliceHelper.Add(a)

	name := a.ReadName()
	_, wasPaired := t.pairedNames[name]
	_, hasMateIdx := t.currentMates[name]
	dontHaveExpectedPair := a.IsPaired() && a.Mate().IsMapped() && a.Mate().Start() < a.Start() && !wasPaired && !hasMateIdx

	admitted := false
	if wasPaired {
		t.allocate(a)
		delete(t.pairedNames, name)
		t.samplingBudget--
		admitted = true
	}

	if t.samplingBudget < 1 {
		return
	}

	if len(t.currentWindow) > t.samplingBudget && !hasMateIdx {
		if !admitted && !dontHaveExpectedPair && t.rand.Float64() < t.samplingProb {
			t.replaceInWindow(a)
		}
	} else if !admitted && !dontHaveExpectedPair {
		t.appendToWindow(a)
	}

	t.samplingProb = 1 / (beta + 1/t.samplingProb)
}

// replaceInWindow implements step 6's reservoir replacement,
// preserving the source's off-by-one: the candidate slot is drawn
// from [0, len(current_window)-1), excluding the final index.
func (t *Tile) replaceInWindow(a align.Alignment) {
	n := len(t.currentWindow)
	if n <= 1 {
		return
	}
	victim := t.rand.Intn(n - 1)
	old := t.currentWindow[victim]
	t.currentWindow[victim] = a

	oldName := old.ReadName()
	if idxs, ok := t.currentMates[oldName]; ok {
		filtered := idxs[:0]
		for _, idx := range idxs {
			if idx != victim {
				filtered = append(filtered, idx)
			}
		}
		if len(filtered) == 0 {
			delete(t.currentMates, oldName)
		} else {
			t.currentMates[oldName] = filtered
		}
	}
}

// appendToWindow implements step 7, preserving the source's off-by-one:
// the recorded index is len(current_window) taken *after* the append,
// i.e. one past the new element's actual index.
func (t *Tile) appendToWindow(a align.Alignment) {
	t.currentWindow = append(t.currentWindow, a)
	name := a.ReadName()
	idxs := t.currentMates[name]
	if len(idxs) >= currentMatesCap {
		return
	}
	t.currentMates[name] = append(idxs, len(t.currentWindow))
}

// emptyBucket flushes the current sampling window.
func (t *Tile) emptyBucket() {
	for _, a := range t.currentWindow {
		t.allocate(a)
		name := a.ReadName()
		if _, ok := t.pairedNames[name]; ok {
			delete(t.pairedNames, name)
		} else if a.IsPaired() && a.Mate().IsMapped() {
			t.pairedNames[name] = struct{}{}
		}
	}
	t.currentMates = make(map[string][]int)
	t.currentWindow = nil
}

// allocate partitions a into contained/overlapping/discarded based on
// its position relative to the tile interval.
func (t *Tile) allocate(a align.Alignment) {
	switch {
	case a.Start() >= t.Start && a.Start() < t.End:
		t.containedRecords = append(t.containedRecords, a)
	case a.End() > t.Start && a.Start() < t.Start:
		t.overlappingRecords = append(t.overlappingRecords, a)
	}
}

// SetLoaded finalizes the tile: flushes the final bucket, releases
// sampler scratch, and partitions splice features into
// contained/overlapping by start position.
func (t *Tile) SetLoaded() {
	t.emptyBucket()
	t.currentMates = nil
	t.currentWindow = nil
	t.pairedNames = nil

	for _, j := range t.spliceHelper.Features() {
		if j.Start >= t.Start && j.Start < t.End {
			t.spliceContained = append(t.spliceContained, j)
		} else {
			t.spliceOverlapping = append(t.spliceOverlapping, j)
		}
	}
	t.spliceHelper.Finish()

	t.loaded = true
}
