package cache

import "fmt"

// Cancelled is returned by Loader.Load when a load was aborted by
// cooperative cancellation (memory pressure or explicit cancel). It is
// not an error to the caller; partial results may already have been
// returned.
var Cancelled = fmt.Errorf("tilecache: load cancelled")

// ReaderFaultError wraps any non-corrupt-index error surfaced by the
// upstream reader during a load.
type ReaderFaultError struct {
	Err error
}

func (e *ReaderFaultError) Error() string { return fmt.Sprintf("tilecache: reader fault: %v", e.Err) }
func (e *ReaderFaultError) Unwrap() error { return e.Err }

// MissingIndexError is returned when the cache is constructed over a
// reader with no index; such a cache cannot serve Query.
type MissingIndexError struct {
	Sequence string
}

func (e *MissingIndexError) Error() string {
	return "tilecache: reader has no index, cannot serve indexed queries"
}
