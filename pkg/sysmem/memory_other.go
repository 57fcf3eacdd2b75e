//go:build !darwin && !linux

package sysmem

// detectSystemMemory has no implementation on platforms other than
// linux/darwin; zero total makes Read() report Fraction() == 1, so
// the memory probe never spuriously cancels a load here.
func detectSystemMemory() (total int64, available int64) {
	return 0, 0
}
