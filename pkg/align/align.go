// Package align defines the alignment record capability set consumed by
// the tile cache. The record type is treated as an external
// collaborator; this package defines the interface the cache needs and
// ships one real implementation (Record) over github.com/biogo/hts/sam.
package align

// BisulfiteContext selects a bisulfite-conversion context. The cache only
// threads this value through to the counts sink; calling the context is
// out of scope here.
type BisulfiteContext int

const (
	BisulfiteContextNone BisulfiteContext = iota
	BisulfiteContextCG
	BisulfiteContextCHH
	BisulfiteContextCHG
	BisulfiteContextHCG
	BisulfiteContextGCH
	BisulfiteContextWCG
	BisulfiteContextAny
)

// Mate describes the paired-end partner of an Alignment, as seen from the
// alignment itself (no back-reference to the mate's own Alignment).
type Mate interface {
	IsMapped() bool
	Start() int
}

// Alignment is the capability set the cache needs from an alignment
// record. Implementations must be comparable by read name
// for mate-pairing purposes but need not be otherwise hashable.
type Alignment interface {
	Start() int
	End() int
	ReadName() string

	IsPaired() bool
	IsMapped() bool
	IsDuplicate() bool
	IsVendorFailedRead() bool
	IsProperPair() bool

	MappingQuality() int
	Mate() Mate
	TemplateLength() int

	ReadSequence() string
	SetMateSequence(seq string)

	Library() string
}

// ReadGroupFilter rejects alignments whose read group should not be
// displayed. A nil filter rejects nothing.
type ReadGroupFilter func(a Alignment) bool
