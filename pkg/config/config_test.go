package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileSizeBasesDerivesFromVisibilityWindow(t *testing.T) {
	s := Default()
	s.MaxVisibleRangeKB = 16
	assert.Equal(t, 16000, s.TileSizeBases("chr1"))
}

func TestTileSizeBasesAppliesMitochondrialOverride(t *testing.T) {
	s := Default()
	s.MaxVisibleRangeKB = 16
	assert.Equal(t, 1000, s.TileSizeBases("chrM"))
	assert.Equal(t, 1000, s.TileSizeBases("MT"))
}

func TestTileSizeBasesNeverGoesBelowOne(t *testing.T) {
	s := Default()
	s.MaxVisibleRangeKB = 0
	assert.Equal(t, 1, s.TileSizeBases("chr1"))
}

func TestIsMitochondrialRecognizesAllAliases(t *testing.T) {
	for _, name := range []string{"M", "chrM", "MT", "chrMT"} {
		assert.True(t, IsMitochondrial(name), name)
	}
	assert.False(t, IsMitochondrial("chr1"))
}
