// Package areader defines the upstream alignment-source capability set
// that the tile cache is built on top of. The htsbam subpackage
// implements it against real BAM files, fetching their bytes through
// the blobstore subpackage (local disk or S3).
package areader

import (
	"io"

	"github.com/scttfrdmn/tilecache/pkg/align"
)

// Iterator is a single-pass, closeable stream of alignments, matching
// net.sf.samtools.util.CloseableIterator.
type Iterator interface {
	Next() bool
	Record() align.Alignment
	Err() error
	io.Closer
}

// Reader is the upstream alignment-source capability set the cache
// needs: sequence names, header, has-index, iterator, query, close.
type Reader interface {
	SequenceNames() []string
	Header() any
	HasIndex() bool
	Iterator() (Iterator, error)
	// Query returns alignments overlapping [start, end) on sequence,
	// using 0-based half-open coordinates regardless of the backend's
	// native indexing convention. contained, when true, restricts results
	// to alignments fully contained in the interval (most callers in this
	// module pass false, matching CachingQueryReader.loadTiles).
	Query(sequence string, start, end int, contained bool) (Iterator, error)
	Close() error
}

// EmptyIterator is always exhausted. Used when a query cannot be served
// (e.g. a missing sequence) without treating the situation as an error.
type EmptyIterator struct{}

func (EmptyIterator) Next() bool             { return false }
func (EmptyIterator) Record() align.Alignment { return nil }
func (EmptyIterator) Err() error             { return nil }
func (EmptyIterator) Close() error           { return nil }
