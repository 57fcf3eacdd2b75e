// Package config defines the configuration snapshot the cache consults
// per load. Modeled as a plain struct passed in by the caller rather
// than a live preferences singleton, unlike IGV's PreferenceManager.
package config

import "github.com/scttfrdmn/tilecache/pkg/align"

// Snapshot is an immutable view of the display/filter preferences
// that affect one cache load.
type Snapshot struct {
	// MaxVisibleRangeKB controls tile size: tile size in bases is
	// derived from this visibility window.
	MaxVisibleRangeKB float64

	FilterFailedReads bool
	ShowDuplicates    bool
	QualityThreshold  int
	ShowJunctionTrack bool

	MinInsertSizePercentile float64
	MaxInsertSizePercentile float64

	ReadGroupFilter align.ReadGroupFilter

	BisulfiteContext align.BisulfiteContext
}

// Default returns a Snapshot with IGV-equivalent defaults: no mapping
// quality threshold, vendor-failed reads and duplicates
// hidden, junction track on, 10th/90th percentile insert-size bounds.
func Default() Snapshot {
	return Snapshot{
		MaxVisibleRangeKB:       16,
		FilterFailedReads:       true,
		ShowDuplicates:          false,
		QualityThreshold:        0,
		ShowJunctionTrack:       true,
		MinInsertSizePercentile: 0.1,
		MaxInsertSizePercentile: 0.9,
		BisulfiteContext:        align.BisulfiteContextNone,
	}
}

// TileSizeBases returns the tile size in bases this snapshot implies
// for sequence, applying the mitochondrial override.
func (s Snapshot) TileSizeBases(sequence string) int {
	if IsMitochondrial(sequence) {
		return 1000
	}
	size := int(s.MaxVisibleRangeKB * 1000)
	if size < 1 {
		size = 1
	}
	return size
}

// IsMitochondrial reports whether sequence is one of the recognized
// mitochondrial reference names.
func IsMitochondrial(sequence string) bool {
	switch sequence {
	case "M", "chrM", "MT", "chrMT":
		return true
	default:
		return false
	}
}
