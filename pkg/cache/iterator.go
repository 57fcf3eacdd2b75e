package cache

import "github.com/scttfrdmn/tilecache/pkg/align"

// TiledIterator is a single-pass iterator over a query's sorted,
// filtered record list. It is non-restartable; Close
// is a no-op since it does not own the underlying list.
type TiledIterator struct {
	records []align.Alignment
	pos     int
}

// NewTiledIterator wraps records (already sorted and filtered to the
// query interval) as an iterator.
func NewTiledIterator(records []align.Alignment) *TiledIterator {
	return &TiledIterator{records: records, pos: -1}
}

// Next advances to the next record, returning false once exhausted.
func (it *TiledIterator) Next() bool {
	it.pos++
	return it.pos < len(it.records)
}

// Record returns the current record; only valid after a Next that
// returned true.
func (it *TiledIterator) Record() align.Alignment { return it.records[it.pos] }

// Err is always nil: a TiledIterator never fails independently of the
// load that produced its backing slice.
func (it *TiledIterator) Err() error { return nil }

// Close is a no-op: the iterator does not own the underlying list.
func (it *TiledIterator) Close() error { return nil }
