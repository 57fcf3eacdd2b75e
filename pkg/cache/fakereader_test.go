package cache

import (
	"github.com/scttfrdmn/tilecache/pkg/align"
	"github.com/scttfrdmn/tilecache/pkg/areader"
)

// fakeReader serves a fixed, pre-populated set of records for any
// query, ignoring the requested interval. Good enough to exercise the
// loader/planner without real BAM I/O.
type fakeReader struct {
	records    []align.Alignment
	hasIndex   bool
	queryErr   error
	queryCount int
}

func (f *fakeReader) SequenceNames() []string { return []string{"chr1"} }
func (f *fakeReader) Header() any             { return nil }
func (f *fakeReader) HasIndex() bool          { return f.hasIndex }
func (f *fakeReader) Close() error            { return nil }

func (f *fakeReader) Iterator() (areader.Iterator, error) {
	return &fakeIterator{records: f.records, pos: -1}, nil
}

func (f *fakeReader) Query(sequence string, start, end int, contained bool) (areader.Iterator, error) {
	f.queryCount++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeIterator{records: f.records, pos: -1}, nil
}

type fakeIterator struct {
	records []align.Alignment
	pos     int
}

func (it *fakeIterator) Next() bool {
	it.pos++
	return it.pos < len(it.records)
}

func (it *fakeIterator) Record() align.Alignment { return it.records[it.pos] }
func (it *fakeIterator) Err() error               { return nil }
func (it *fakeIterator) Close() error             { return nil }
