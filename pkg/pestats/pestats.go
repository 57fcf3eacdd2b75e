// Package pestats accumulates paired-end insert-size statistics per
// library, grounded on CachingQueryReader.java's peStats map and the
// PEStats.update/.compute(min,max) calls it drives.
package pestats

import "sort"

// NullLibrary is the grouping key for alignments with no library tag,
// matching CachingQueryReader.loadTiles's `lb == null -> "null"`.
const NullLibrary = "null"

// Record is the subset of align.Alignment PEStats needs. Declared
// locally (rather than importing pkg/align) to keep this package
// dependency-free and reusable.
type Record interface {
	Start() int
	IsProperPair() bool
	TemplateLength() int
}

// Stats accumulates insert-size samples for one library and, once
// Compute is called, exposes percentile-bounded min/max/mean/median.
type Stats struct {
	Library string

	insertSizes []int

	computed bool
	min, max int
	mean     float64
	median   int
}

// New creates an empty Stats bucket for library.
func New(library string) *Stats {
	return &Stats{Library: library}
}

// Update records one proper-pair alignment's insert size. Matches
// PEStats.update(record), which in the original reads the absolute
// template length from the alignment.
func (s *Stats) Update(insertSize int) {
	if insertSize < 0 {
		insertSize = -insertSize
	}
	s.insertSizes = append(s.insertSizes, insertSize)
	s.computed = false
}

// Compute derives percentile-bounded min/max/mean/median from the
// accumulated samples, matching PEStats.compute(minPercentile,
// maxPercentile). For small samples these percentiles revert to the
// true min/max, same caveat as the original's TODO comment.
func (s *Stats) Compute(minPercentile, maxPercentile float64) {
	n := len(s.insertSizes)
	if n == 0 {
		s.computed = true
		return
	}

	sorted := append([]int(nil), s.insertSizes...)
	sort.Ints(sorted)

	loIdx := int(float64(n) * minPercentile)
	hiIdx := int(float64(n) * maxPercentile)
	if loIdx < 0 {
		loIdx = 0
	}
	if hiIdx >= n {
		hiIdx = n - 1
	}
	if hiIdx < loIdx {
		hiIdx = loIdx
	}

	s.min = sorted[loIdx]
	s.max = sorted[hiIdx]

	var sum int64
	for _, v := range sorted {
		sum += int64(v)
	}
	s.mean = float64(sum) / float64(n)
	s.median = sorted[n/2]
	s.computed = true
}

// MinMax returns the percentile-bounded min/max computed by Compute.
// Safe to call before Compute; returns zeros.
func (s *Stats) MinMax() (int, int) { return s.min, s.max }

// Mean returns the sample mean insert size.
func (s *Stats) Mean() float64 { return s.mean }

// Median returns the sample median insert size.
func (s *Stats) Median() int { return s.median }

// N returns the number of samples accumulated.
func (s *Stats) N() int { return len(s.insertSizes) }
