package pipeline

import (
	"fmt"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

// State is the lifecycle stage of a run.
type State int

const (
	StateSetup State = iota
	StateRunning
	StateComplete
	StateFailed
)

var stateNames = [...]string{"setup", "running", "complete", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return errors.Invalid("unknown run state %q", b)
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool { return s == StateComplete || s == StateFailed }

// tracker enforces the run lifecycle: Setup → Running → Complete, with
// Failed reachable from Setup and Running. While running, frames must be
// committed in order 1, 2, 3, ...
type tracker struct {
	state State
	frame int
	total int
}

func newTracker(total int) *tracker { return &tracker{total: total} }

func (t *tracker) to(next State) error {
	ok := false
	switch t.state {
	case StateSetup:
		ok = next == StateRunning || next == StateFailed
	case StateRunning:
		ok = next == StateFailed || (next == StateComplete && t.frame == t.total)
	}
	if !ok {
		return errors.New(errors.ErrCodeInternal, "illegal run transition %s -> %s at frame %d/%d", t.state, next, t.frame, t.total)
	}
	t.state = next
	return nil
}

func (t *tracker) commit(index int) error {
	if t.state != StateRunning {
		return errors.New(errors.ErrCodeInternal, "frame %d committed while %s", index, t.state)
	}
	if index != t.frame+1 || index > t.total {
		return errors.New(errors.ErrCodeInternal, "frame %d committed out of order after %d", index, t.frame)
	}
	t.frame = index
	return nil
}

// fail moves to Failed unless the run already terminated.
func (t *tracker) fail() {
	if !t.state.Terminal() {
		t.state = StateFailed
	}
}
