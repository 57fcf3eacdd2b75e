// Package splice detects splice junctions from spliced alignments and
// tallies per-junction read support, grounded on CachingQueryReader's
// SpliceJunctionHelper. A junction is any CIGAR 'N'
// (skipped-reference) operation; its flanking exon boundaries become
// the junction's start/end.
package splice

import (
	"sort"

	"github.com/biogo/hts/sam"
	"github.com/scttfrdmn/tilecache/pkg/align"
)

// Strand records which genomic strand a junction was observed on.
type Strand int

const (
	StrandUnknown Strand = iota
	StrandPlus
	StrandMinus
)

// Junction is one observed splice junction: a gap between two exon
// blocks of a spliced read, identified by its 0-based [start, end)
// reference span (the skipped 'N' region).
type Junction struct {
	Start, End int
	Strand     Strand

	flankingStart, flankingEnd int
	depth                      int
}

// FlankingStart returns the minimum upstream exon bases observed
// flanking this junction across all supporting reads.
func (j *Junction) FlankingStart() int { return j.flankingStart }

// FlankingEnd returns the minimum downstream exon bases observed
// flanking this junction across all supporting reads.
func (j *Junction) FlankingEnd() int { return j.flankingEnd }

// Depth returns the number of reads supporting this junction.
func (j *Junction) Depth() int { return j.depth }

// Helper accumulates splice junctions for one tile. Add is called for
// every filter-passing alignment (spliced or not, matching
// SpliceJunctionHelper.addAlignment's CIGAR scan); non-spliced reads
// are a no-op.
type Helper struct {
	byKey map[junctionKey]*Junction
}

type junctionKey struct {
	start, end int
}

// NewHelper creates an empty splice-junction accumulator.
func NewHelper() *Helper {
	return &Helper{byKey: make(map[junctionKey]*Junction)}
}

// underlying is satisfied by align.Record; other Alignment
// implementations simply contribute no junctions.
type underlying interface {
	Underlying() *sam.Record
}

// Add scans a's CIGAR for skipped-reference ('N') operations and
// records each as (or merges into) a junction. Reads whose
// concrete type does not expose a *sam.Record (i.e. not align.Record)
// are treated as unspliced.
func (h *Helper) Add(a align.Alignment) {
	u, ok := a.(underlying)
	if !ok {
		return
	}
	rec := u.Underlying()

	pos := rec.Pos
	upstreamExon := 0
	for i, co := range rec.Cigar {
		consumesRef := co.Type().Consumes().Reference == 1
		switch co.Type() {
		case sam.CigarSkipped:
			start := pos
			end := pos + co.Len()
			downstreamExon := exonLenAfter(rec.Cigar, i)
			h.record(start, end, strandOf(rec), upstreamExon, downstreamExon)
			upstreamExon = 0
		default:
			if co.Type() == sam.CigarMatch {
				upstreamExon += co.Len()
			}
		}
		if consumesRef {
			pos += co.Len()
		}
	}
}

func exonLenAfter(cigar sam.Cigar, skipIdx int) int {
	exon := 0
	for i := skipIdx + 1; i < len(cigar); i++ {
		co := cigar[i]
		switch co.Type() {
		case sam.CigarSkipped:
			return exon
		case sam.CigarMatch:
			exon += co.Len()
		}
	}
	return exon
}

func strandOf(rec *sam.Record) Strand {
	if rec.Flags&sam.Reverse != 0 {
		return StrandMinus
	}
	return StrandPlus
}

func (h *Helper) record(start, end int, strand Strand, upExon, downExon int) {
	key := junctionKey{start, end}
	j, ok := h.byKey[key]
	if !ok {
		j = &Junction{Start: start, End: end, Strand: strand, flankingStart: upExon, flankingEnd: downExon}
		h.byKey[key] = j
	}
	j.depth++
	if upExon < j.flankingStart {
		j.flankingStart = upExon
	}
	if downExon < j.flankingEnd {
		j.flankingEnd = downExon
	}
}

// Finish is a no-op placeholder mirroring SpliceJunctionHelper's
// finish() hook; junctions are always ready to read via Features.
func (h *Helper) Finish() {}

// Features returns all observed junctions ordered by start position,
// matching the ordering the original's junction track renderer expects.
func (h *Helper) Features() []*Junction {
	out := make([]*Junction, 0, len(h.byKey))
	for _, j := range h.byKey {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Start != out[k].Start {
			return out[i].Start < out[k].Start
		}
		return out[i].End < out[k].End
	})
	return out
}
