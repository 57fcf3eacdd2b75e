package pestats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateTakesAbsoluteValue(t *testing.T) {
	s := New("lib1")
	s.Update(-300)
	s.Update(300)
	assert.Equal(t, 2, s.N())

	s.Compute(0, 1)
	assert.Equal(t, 300.0, s.Mean())
}

func TestComputeMeanMedian(t *testing.T) {
	s := New("lib1")
	for _, v := range []int{100, 200, 300, 400, 500} {
		s.Update(v)
	}
	s.Compute(0, 1)

	assert.Equal(t, 300.0, s.Mean())
	assert.Equal(t, 300, s.Median())

	min, max := s.MinMax()
	assert.Equal(t, 100, min)
	assert.Equal(t, 500, max)
}

func TestComputePercentileBounds(t *testing.T) {
	s := New("lib1")
	for i := 1; i <= 100; i++ {
		s.Update(i)
	}
	s.Compute(0.1, 0.9)

	min, max := s.MinMax()
	assert.Equal(t, 11, min)
	assert.Equal(t, 91, max)
}

func TestComputeOnEmptyStatsDoesNotPanic(t *testing.T) {
	s := New("lib1")
	assert.NotPanics(t, func() { s.Compute(0.1, 0.9) })
	assert.Equal(t, 0, s.N())
}
