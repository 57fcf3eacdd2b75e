// Package counts implements the per-tile coverage sink: Inc(alignment)
// updates per-base depth unconditionally for every filter-passing read,
// independent of downsampling. Dense and Sparse are selected by tile
// span exactly the way CachingQueryReader.AlignmentTile's constructor
// does (span <= 100,000 -> Dense, else Sparse).
package counts

import "github.com/scttfrdmn/tilecache/pkg/align"

// DenseSparseThreshold is the tile-span cutoff above which Sparse is
// used instead of Dense, matching AlignmentTile's constructor.
const DenseSparseThreshold = 100000

// Counts is the per-tile coverage sink.
type Counts interface {
	Inc(a align.Alignment)
	DepthAt(pos int) int
	Start() int
	End() int
}

// New picks Dense or Sparse for a tile spanning [start, end).
func New(start, end int, bisulfite align.BisulfiteContext) Counts {
	if end-start > DenseSparseThreshold {
		return NewSparse(start, end, bisulfite)
	}
	return NewDense(start, end, bisulfite)
}

// Dense stores one depth counter per base in [start, end). Appropriate
// for normal-sized tiles (tile span <= 100,000 bases).
type Dense struct {
	start, end int
	bisulfite  align.BisulfiteContext
	depth      []int32
}

// NewDense allocates a dense per-base counter for [start, end).
func NewDense(start, end int, bisulfite align.BisulfiteContext) *Dense {
	return &Dense{start: start, end: end, bisulfite: bisulfite, depth: make([]int32, end-start)}
}

func (d *Dense) Start() int { return d.start }
func (d *Dense) End() int   { return d.end }

// Inc increments depth for every base of the tile the alignment covers.
func (d *Dense) Inc(a align.Alignment) {
	lo, hi := clamp(a.Start(), a.End(), d.start, d.end)
	for p := lo; p < hi; p++ {
		d.depth[p-d.start]++
	}
}

func (d *Dense) DepthAt(pos int) int {
	if pos < d.start || pos >= d.end {
		return 0
	}
	return int(d.depth[pos-d.start])
}

// Sparse stores depth only for bases that have been touched, as a map.
// Appropriate for very wide tiles where a dense array would waste
// memory on mostly-uncovered bases.
type Sparse struct {
	start, end int
	bisulfite  align.BisulfiteContext
	depth      map[int]int32
}

// NewSparse allocates a sparse per-base counter for [start, end).
func NewSparse(start, end int, bisulfite align.BisulfiteContext) *Sparse {
	return &Sparse{start: start, end: end, bisulfite: bisulfite, depth: make(map[int]int32)}
}

func (s *Sparse) Start() int { return s.start }
func (s *Sparse) End() int   { return s.end }

func (s *Sparse) Inc(a align.Alignment) {
	lo, hi := clamp(a.Start(), a.End(), s.start, s.end)
	for p := lo; p < hi; p++ {
		s.depth[p]++
	}
}

func (s *Sparse) DepthAt(pos int) int {
	if pos < s.start || pos >= s.end {
		return 0
	}
	return int(s.depth[pos])
}

func clamp(aStart, aEnd, tileStart, tileEnd int) (lo, hi int) {
	lo, hi = aStart, aEnd
	if lo < tileStart {
		lo = tileStart
	}
	if hi > tileEnd {
		hi = tileEnd
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
