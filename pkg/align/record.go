package align

import (
	"github.com/biogo/hts/sam"
)

// Record adapts a *sam.Record to the Alignment interface.
type Record struct {
	rec     *sam.Record
	library string
	mate    *mateInfo
	matSeq  string
}

type mateInfo struct {
	mapped bool
	start  int
}

func (m *mateInfo) IsMapped() bool { return m.mapped }
func (m *mateInfo) Start() int     { return m.start }

// NewRecord wraps rec. library should be resolved from the record's RG
// aux tag against the BAM header's read-group dictionary by the caller
// (areader/htsbam does this); an empty string means "no library" and is
// normalized to "null" by the loader.
func NewRecord(rec *sam.Record, library string) *Record {
	r := &Record{rec: rec, library: library}
	if rec.Flags&sam.Paired != 0 {
		r.mate = &mateInfo{
			mapped: rec.Flags&sam.MateUnmapped == 0,
			start:  rec.MatePos,
		}
	}
	return r
}

// Start returns the 0-based leftmost reference position.
func (r *Record) Start() int { return r.rec.Pos }

// End returns the 0-based exclusive reference end, computed by summing
// the reference-consuming CIGAR operations, the same arithmetic
// biogo-hts's sam_test.Overlap example uses.
func (r *Record) End() int {
	end := r.rec.Pos
	for _, co := range r.rec.Cigar {
		if co.Type().Consumes().Reference == 1 {
			end += co.Len()
		}
	}
	return end
}

func (r *Record) ReadName() string { return r.rec.Name }

func (r *Record) IsPaired() bool          { return r.rec.Flags&sam.Paired != 0 }
func (r *Record) IsMapped() bool          { return r.rec.Flags&sam.Unmapped == 0 }
func (r *Record) IsDuplicate() bool       { return r.rec.Flags&sam.Duplicate != 0 }
func (r *Record) IsVendorFailedRead() bool { return r.rec.Flags&sam.QCFail != 0 }
func (r *Record) IsProperPair() bool      { return r.rec.Flags&sam.ProperPair != 0 }

func (r *Record) MappingQuality() int { return int(r.rec.MapQ) }

func (r *Record) TemplateLength() int { return r.rec.TempLen }

func (r *Record) Mate() Mate {
	if r.mate == nil {
		return &mateInfo{}
	}
	return r.mate
}

func (r *Record) ReadSequence() string {
	if r.matSeq != "" {
		return r.matSeq
	}
	return string(r.rec.Seq.Expand())
}

// SetMateSequence stores a reconstructed mate sequence directly on this
// record, mirroring Alignment.setMateSequence in the original Java. This
// is used by the loader when it stitches a mapped read's unmapped mate's
// sequence back onto whichever record arrived second.
func (r *Record) SetMateSequence(seq string) { r.matSeq = seq }

func (r *Record) Library() string { return r.library }

// Underlying exposes the wrapped *sam.Record for callers (such as
// pkg/splice) that need CIGAR access beyond the Alignment interface.
func (r *Record) Underlying() *sam.Record { return r.rec }
