// Package testalign provides a minimal, hand-constructed
// align.Alignment implementation for tests elsewhere in the module
// that need synthetic reads without going through biogo/hts.
package testalign

import "github.com/scttfrdmn/tilecache/pkg/align"

// Fake is a settable align.Alignment for tests.
type Fake struct {
	NameVal        string
	StartVal       int
	EndVal         int
	Paired         bool
	Mapped         bool
	Duplicate      bool
	VendorFailed   bool
	ProperPairVal  bool
	MapQ           int
	MateVal        FakeMate
	TemplateLenVal int
	SeqVal         string
	LibraryVal     string
}

// FakeMate is a settable align.Mate for tests.
type FakeMate struct {
	MappedVal bool
	StartVal  int
}

func (m FakeMate) IsMapped() bool { return m.MappedVal }
func (m FakeMate) Start() int     { return m.StartVal }

func (f *Fake) Start() int                { return f.StartVal }
func (f *Fake) End() int                  { return f.EndVal }
func (f *Fake) ReadName() string          { return f.NameVal }
func (f *Fake) IsPaired() bool            { return f.Paired }
func (f *Fake) IsMapped() bool            { return f.Mapped }
func (f *Fake) IsDuplicate() bool         { return f.Duplicate }
func (f *Fake) IsVendorFailedRead() bool  { return f.VendorFailed }
func (f *Fake) IsProperPair() bool        { return f.ProperPairVal }
func (f *Fake) MappingQuality() int       { return f.MapQ }
func (f *Fake) Mate() align.Mate          { return f.MateVal }
func (f *Fake) TemplateLength() int       { return f.TemplateLenVal }
func (f *Fake) ReadSequence() string      { return f.SeqVal }
func (f *Fake) SetMateSequence(seq string) { f.SeqVal = seq }
func (f *Fake) Library() string           { return f.LibraryVal }

// New builds a mapped, unpaired Fake spanning [start, end) with name.
func New(name string, start, end int) *Fake {
	return &Fake{NameVal: name, StartVal: start, EndVal: end, Mapped: true}
}
