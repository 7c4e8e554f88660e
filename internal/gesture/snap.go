package gesture

import "time"

// DefaultSnapWindow is the longest gap between snap-ready and snap-done that still counts as a snap.
const DefaultSnapWindow = 500 * time.Millisecond

// SnapTracker turns the continuous snap-ready and snap-done predicates into a
// one-shot snap signal. A snap fires when done follows ready within the window,
// and the tracker re-arms only once done has cleared.
type SnapTracker struct {
	window   time.Duration
	readyAt  time.Time
	hasReady bool
	fired    bool
}

// NewSnapTracker creates a SnapTracker. A non-positive window uses DefaultSnapWindow.
func NewSnapTracker(window time.Duration) *SnapTracker {
	if window <= 0 {
		window = DefaultSnapWindow
	}
	return &SnapTracker{window: window}
}

// Observe records one frame's predicates and reports whether a snap completed.
func (t *SnapTracker) Observe(ready, done bool, now time.Time) bool {
	switch {
	case ready:
		t.readyAt = now
		t.hasReady = true
		t.fired = false
	case done:
		if t.fired || !t.hasReady {
			return false
		}
		t.hasReady = false
		if now.Sub(t.readyAt) > t.window {
			return false
		}
		t.fired = true
		return true
	default:
		t.fired = false
	}
	return false
}

// Reset forgets any pending ready observation.
func (t *SnapTracker) Reset() {
	*t = SnapTracker{window: t.window}
}
