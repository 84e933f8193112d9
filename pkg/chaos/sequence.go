package chaos

import (
	"sync"

	"github.com/matzehuels/chaosgame/pkg/geometry"
)

// Sequence is the ordered, append-only list of points produced by a run.
// It is safe for one writer (the owning Iterator) and many concurrent readers.
type Sequence struct {
	mu     sync.RWMutex
	points []geometry.Point
}

func newSequence(seed geometry.Point, capacity int) *Sequence {
	pts := make([]geometry.Point, 1, max(capacity, 1))
	pts[0] = seed
	return &Sequence{points: pts}
}

func (s *Sequence) append(p geometry.Point) {
	s.mu.Lock()
	s.points = append(s.points, p)
	s.mu.Unlock()
}

// Len returns the number of points, including the seed.
func (s *Sequence) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// At returns the i-th point. It panics if i is out of range.
func (s *Sequence) At(i int) geometry.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points[i]
}

// Last returns the most recently appended point.
func (s *Sequence) Last() geometry.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points[len(s.points)-1]
}

// Prefix returns the first k points. The returned slice shares storage with
// the sequence but is capped at k, so appending to it never touches later
// points, and callers must not modify its elements. It panics if k exceeds Len.
func (s *Sequence) Prefix(k int) []geometry.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.points[:k:k]
}

// Points returns a copy of the whole sequence.
func (s *Sequence) Points() []geometry.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geometry.Point, len(s.points))
	copy(out, s.points)
	return out
}
