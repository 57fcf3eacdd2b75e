package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRegionValid(t *testing.T) {
	r, err := ParseRegion("chr1:1000000-2000000")
	assert.NoError(t, err)
	assert.Equal(t, Region{Sequence: "chr1", Start: 1000000, End: 2000000}, r)
}

func TestParseRegionRejectsMissingColon(t *testing.T) {
	_, err := ParseRegion("chr1-1000000-2000000")
	assert.Error(t, err)
}

func TestParseRegionRejectsMissingDash(t *testing.T) {
	_, err := ParseRegion("chr1:1000000")
	assert.Error(t, err)
}

func TestParseRegionRejectsNonNumericBounds(t *testing.T) {
	_, err := ParseRegion("chr1:start-2000000")
	assert.Error(t, err)
}
