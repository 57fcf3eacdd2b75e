package htsbam

import (
	"io"

	"github.com/biogo/hts/bam"

	"github.com/scttfrdmn/tilecache/pkg/align"
	"github.com/scttfrdmn/tilecache/pkg/areader"
)

// streamIterator walks the whole BAM file in storage order, for
// areader.Reader.Iterator (a whole-file scan;).
type streamIterator struct {
	r   *Reader
	cur align.Alignment
	err error
	eof bool
}

func (s *streamIterator) Next() bool {
	if s.eof || s.err != nil {
		return false
	}
	rec, err := s.r.bam.Read()
	if err != nil {
		if err == io.EOF {
			s.eof = true
		} else {
			s.err = &areader.ReaderFaultError{Err: err}
		}
		s.cur = nil
		return false
	}
	s.cur = s.r.wrap(rec)
	return true
}

func (s *streamIterator) Record() align.Alignment { return s.cur }
func (s *streamIterator) Err() error              { return s.err }
func (s *streamIterator) Close() error            { return nil }

// chunkIterator walks the index-selected bgzf chunks for a Query call.
type chunkIterator struct {
	r         *Reader
	it        *bam.Iterator
	contained bool
	start, end int
	cur       align.Alignment
}

func (c *chunkIterator) Next() bool {
	for c.it.Next() {
		wrapped := c.r.wrap(c.it.Record())
		recStart, recEnd := wrapped.Start(), wrapped.End()
		if recEnd <= c.start || recStart >= c.end {
			continue
		}
		if c.contained && (recStart < c.start || recEnd > c.end) {
			continue
		}
		c.cur = wrapped
		return true
	}
	c.cur = nil
	return false
}

func (c *chunkIterator) Record() align.Alignment { return c.cur }

func (c *chunkIterator) Err() error {
	if err := c.it.Error(); err != nil {
		return &areader.ReaderFaultError{Err: err}
	}
	return nil
}

func (c *chunkIterator) Close() error { return c.it.Close() }
