package gesture

import (
	"fmt"
	"strconv"
	"strings"
)

// State is the per-hand finger-count classification.
// The zero value is NotTracked.
type State struct {
	tracked  bool
	extended int
}

// NotTracked is the state of a hand with no tracking data.
var NotTracked = State{}

// Closed is the state of a tracked hand with no extended fingers.
var Closed = State{tracked: true}

// Extended returns the state of a tracked hand with n extended fingers.
// n is clamped to [0, 5]; zero yields Closed.
func Extended(n int) State {
	if n < 0 {
		n = 0
	}
	if n > len(fiveFingers) {
		n = len(fiveFingers)
	}
	return State{tracked: true, extended: n}
}

// Tracked reports whether the hand was tracked.
func (s State) Tracked() bool { return s.tracked }

// Count returns the number of extended fingers (0 for NotTracked and Closed).
func (s State) Count() int { return s.extended }

func (s State) String() string {
	switch {
	case !s.tracked:
		return "not_tracked"
	case s.extended == 0:
		return "closed"
	default:
		return "extended:" + strconv.Itoa(s.extended)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	str := string(text)
	switch {
	case str == "not_tracked":
		*s = NotTracked
	case str == "closed":
		*s = Closed
	case strings.HasPrefix(str, "extended:"):
		n, err := strconv.Atoi(strings.TrimPrefix(str, "extended:"))
		if err != nil || n < 1 || n > 5 {
			return fmt.Errorf("invalid gesture state %q", str)
		}
		*s = Extended(n)
	default:
		return fmt.Errorf("invalid gesture state %q", str)
	}
	return nil
}

// DisplayedNumber sums the extended-finger counts of the given hands.
// Untracked and closed hands contribute zero.
func DisplayedNumber(states ...State) int {
	total := 0
	for _, s := range states {
		total += s.Count()
	}
	return total
}
