// Package scalar computes per-element normalization statistics over a
// finalized archive and writes them to a companion record.
package scalar

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrNoRows reports a reduction attempted over an empty archive.
var ErrNoRows = errors.New("scalar reduction over zero rows")

// accumulator folds feature rows into running sums. All arithmetic runs in
// float64 and narrows once at the end, so row order cannot perturb the
// result beyond the usual left-to-right summation, which is fixed by index
// order.
type accumulator struct {
	n     int
	sum   []float64
	sumSq []float64
	buf   []float64
}

func newAccumulator(width int) *accumulator {
	return &accumulator{
		sum:   make([]float64, width),
		sumSq: make([]float64, width),
		buf:   make([]float64, width),
	}
}

func (a *accumulator) add(row []float32) error {
	if len(row) != len(a.sum) {
		return fmt.Errorf("scalar row has %d elements, want %d", len(row), len(a.sum))
	}
	for i, v := range row {
		a.buf[i] = float64(v)
	}
	floats.Add(a.sum, a.buf)
	for i, v := range a.buf {
		a.sumSq[i] += v * v
	}
	a.n++
	return nil
}

// finish returns the elementwise mean and population standard deviation.
func (a *accumulator) finish() (mean, std []float32, err error) {
	if a.n == 0 {
		return nil, nil, ErrNoRows
	}
	mean = make([]float32, len(a.sum))
	std = make([]float32, len(a.sum))
	n := float64(a.n)
	for i := range a.sum {
		m := a.sum[i] / n
		variance := a.sumSq[i]/n - m*m
		if variance < 0 {
			variance = 0
		}
		mean[i] = float32(m)
		std[i] = float32(math.Sqrt(variance))
	}
	return mean, std, nil
}

// Compute reduces features elementwise over the row axis. Every row must have
// the same length; the returned slices match one row.
func Compute(features [][]float32) (mean, std []float32, err error) {
	if len(features) == 0 {
		return nil, nil, ErrNoRows
	}
	acc := newAccumulator(len(features[0]))
	for _, row := range features {
		if err := acc.add(row); err != nil {
			return nil, nil, err
		}
	}
	return acc.finish()
}
