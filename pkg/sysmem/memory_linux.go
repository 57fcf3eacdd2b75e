//go:build linux

package sysmem

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

func detectSystemMemory() (total int64, available int64) {
	fields, err := readMeminfo("/proc/meminfo")
	if err != nil {
		return 0, 0
	}

	total = fields["MemTotal"] * 1024
	available = fields["MemAvailable"] * 1024

	if total > 0 && available == 0 {
		// Pre-3.14 kernels don't report MemAvailable; approximate it
		// the way free(1) does on those kernels.
		available = (fields["MemFree"] + fields["Buffers"] + fields["Cached"]) * 1024
	}

	return total, available
}

// readMeminfo parses a /proc/meminfo-formatted file into a map of
// field name to its value in kilobytes.
func readMeminfo(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wanted := map[string]bool{
		"MemTotal": true, "MemAvailable": true, "MemFree": true,
		"Buffers": true, "Cached": true,
	}
	out := make(map[string]int64, len(wanted))

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		key := strings.TrimSuffix(fields[0], ":")
		if !wanted[key] {
			continue
		}
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		out[key] = n
	}
	return out, scanner.Err()
}
