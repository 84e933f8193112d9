package geometry

import (
	"math"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

// OptimalRate returns the contraction ratio that yields a clean,
// non-overlapping attractor for a regular polygon with n vertices.
// The result lies strictly between 0 and 1 for every n >= 3.
func OptimalRate(n int) (float64, error) {
	if err := errors.ValidateVertexCount(n); err != nil {
		return 0, err
	}

	nf := float64(n)
	switch n % 4 {
	case 0:
		return 1 / (1 + math.Tan(math.Pi/nf)), nil
	case 2:
		return 1 / (1 + math.Sin(math.Pi/nf)), nil
	default:
		return 1 / (1 + 2*math.Sin(math.Pi/(2*nf))), nil
	}
}

// MustOptimalRate is like OptimalRate but panics on invalid n.
// It is intended for tables and tests with known-good vertex counts.
func MustOptimalRate(n int) float64 {
	r, err := OptimalRate(n)
	if err != nil {
		panic(err)
	}
	return r
}
