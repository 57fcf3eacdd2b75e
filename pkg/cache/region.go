package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// Region is a parsed genomic interval, e.g. "chr1:1000000-2000000".
type Region struct {
	Sequence   string
	Start, End int
}

// ParseRegion parses a region string shaped like "chr1:1000000-2000000".
func ParseRegion(s string) (Region, error) {
	var r Region

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return r, fmt.Errorf("invalid region %q (expected chr:start-end)", s)
	}
	r.Sequence = parts[0]

	posParts := strings.Split(parts[1], "-")
	if len(posParts) != 2 {
		return r, fmt.Errorf("invalid region %q (expected chr:start-end)", s)
	}

	start, err := strconv.Atoi(posParts[0])
	if err != nil {
		return r, fmt.Errorf("invalid start position in %q: %w", s, err)
	}
	end, err := strconv.Atoi(posParts[1])
	if err != nil {
		return r, fmt.Errorf("invalid end position in %q: %w", s, err)
	}
	r.Start, r.End = start, end
	return r, nil
}
