package chaos

import (
	"fmt"
	"math/rand/v2"

	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/geometry"
)

// Source picks vertex indices. IntN must return a value in [0, n).
type Source interface {
	IntN(n int) int
}

// NewSource returns a deterministic PCG-backed source for the given seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Iterator advances the chaos game one point at a time.
// It is not safe for concurrent use; readers go through Sequence instead.
type Iterator struct {
	vertices []geometry.Point
	rate     float64
	src      Source
	current  geometry.Point
	seq      *Sequence
	steps    int
}

// NewIterator returns an iterator positioned at the origin.
// The vertex slice is copied. rate must lie strictly between 0 and 1.
func NewIterator(vertices []geometry.Point, rate float64, src Source) (*Iterator, error) {
	if len(vertices) < 3 {
		return nil, errors.Invalid("need at least 3 vertices, got %d", len(vertices))
	}
	if !(rate > 0 && rate < 1) {
		return nil, errors.Invalid("rate must be in (0, 1), got %v", rate)
	}
	if src == nil {
		return nil, errors.Invalid("random source is required")
	}

	vs := make([]geometry.Point, len(vertices))
	copy(vs, vertices)
	return &Iterator{
		vertices: vs,
		rate:     rate,
		src:      src,
		current:  geometry.Origin,
		seq:      newSequence(geometry.Origin, 0),
	}, nil
}

// Grow reserves room for n more points so long runs do not reallocate.
func (it *Iterator) Grow(n int) {
	if n <= 0 {
		return
	}
	it.seq.mu.Lock()
	defer it.seq.mu.Unlock()
	if cap(it.seq.points)-len(it.seq.points) >= n {
		return
	}
	grown := make([]geometry.Point, len(it.seq.points), len(it.seq.points)+n)
	copy(grown, it.seq.points)
	it.seq.points = grown
}

// Step picks a vertex, moves the current point rate of the way toward it,
// appends the new point to the sequence and returns it.
// It panics if the source returns an index outside [0, n).
func (it *Iterator) Step() geometry.Point {
	n := len(it.vertices)
	k := it.src.IntN(n)
	if k < 0 || k >= n {
		panic(fmt.Sprintf("chaos: source returned vertex %d, want [0, %d)", k, n))
	}

	v := it.vertices[k]
	next := it.current.Plus(v.Minus(it.current).Times(it.rate))
	it.current = next
	it.seq.append(next)
	it.steps++
	return next
}

// Current returns the current position.
func (it *Iterator) Current() geometry.Point { return it.current }

// Rate returns the contraction ratio.
func (it *Iterator) Rate() float64 { return it.rate }

// Steps returns how many times Step has been called.
func (it *Iterator) Steps() int { return it.steps }

// Vertices returns a copy of the vertex set.
func (it *Iterator) Vertices() []geometry.Point {
	out := make([]geometry.Point, len(it.vertices))
	copy(out, it.vertices)
	return out
}

// Sequence returns the read-only view of every point generated so far.
func (it *Iterator) Sequence() *Sequence { return it.seq }

// Replay runs a fresh iterator seeded with seed for the given number of steps
// and returns the resulting sequence of steps+1 points.
func Replay(vertices []geometry.Point, rate float64, seed uint64, steps int) ([]geometry.Point, error) {
	if steps < 0 {
		return nil, errors.Invalid("steps must be non-negative, got %d", steps)
	}
	it, err := NewIterator(vertices, rate, NewSource(seed))
	if err != nil {
		return nil, err
	}
	it.Grow(steps)
	for i := 0; i < steps; i++ {
		it.Step()
	}
	return it.seq.Prefix(steps + 1), nil
}
