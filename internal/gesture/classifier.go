// Package gesture classifies hand poses from joint positions.
package gesture

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ayusman/mudra/internal/hand"
)

var fiveFingers = hand.Fingers

// Config holds the thresholds used by the Classifier.
type Config struct {
	// StraightRatio scales the wrist-to-tip distance in the straight test.
	StraightRatio float64

	// ThumbExtensionRatio is the minimum distal/proximal thumb segment ratio.
	ThumbExtensionRatio float64

	// TipTouchDistance is the 2D tip distance below which two tips touch (metres).
	TipTouchDistance float64

	// RequireTipTouch adds a thumb-tip to middle-tip contact check to snap-ready.
	RequireTipTouch bool
}

// DefaultConfig returns the standard classifier thresholds.
func DefaultConfig() Config {
	return Config{
		StraightRatio:       1.0,
		ThumbExtensionRatio: 1.5,
		TipTouchDistance:    0.01,
		RequireTipTouch:     false,
	}
}

// Validate checks that the thresholds are usable.
func (c Config) Validate() error {
	if c.StraightRatio <= 0 {
		return fmt.Errorf("straight ratio must be positive, got %v", c.StraightRatio)
	}
	if c.ThumbExtensionRatio <= 0 {
		return fmt.Errorf("thumb extension ratio must be positive, got %v", c.ThumbExtensionRatio)
	}
	if c.TipTouchDistance <= 0 {
		return fmt.Errorf("tip touch distance must be positive, got %v", c.TipTouchDistance)
	}
	return nil
}

// Classifier evaluates per-frame geometric predicates on a single hand.
// It keeps no state between frames; every predicate resolves to false when
// a joint it needs is unavailable.
type Classifier struct {
	config Config
	pose   *hand.Extractor
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(config Config, logger *zap.Logger) *Classifier {
	return &Classifier{
		config: config,
		pose:   hand.NewShapeExtractor(logger),
	}
}

// Config returns the active thresholds.
func (c *Classifier) Config() Config {
	return c.config
}

// SetConfig replaces the thresholds.
func (c *Classifier) SetConfig(config Config) {
	c.config = config
}

// wristDistances returns the 2D distances from the wrist to the finger's
// intermediate base and to its tip.
func (c *Classifier) wristDistances(s *hand.Snapshot, finger hand.Finger) (toBase, toTip float64, ok bool) {
	tip, ok := c.pose.Position2D(s, finger, hand.Tip)
	if !ok {
		return 0, 0, false
	}
	base, ok := c.pose.Position2D(s, finger, hand.PIP)
	if !ok {
		return 0, 0, false
	}
	wrist, ok := c.pose.Position2D(s, hand.Wrist, hand.Tip)
	if !ok {
		return 0, 0, false
	}
	return distance(wrist, base), distance(wrist, tip), true
}

// IsStraight reports whether a finger is extended. The thumb uses the
// segment-ratio test; other fingers are straight when the intermediate base
// lies strictly closer to the wrist than the tip.
func (c *Classifier) IsStraight(s *hand.Snapshot, finger hand.Finger) bool {
	if finger == hand.Thumb {
		return c.IsThumbExtended(s)
	}

	toBase, toTip, ok := c.wristDistances(s, finger)
	if !ok {
		return false
	}
	return toBase < toTip*c.config.StraightRatio
}

// IsBend reports whether the tip lies strictly closer to the wrist than the
// intermediate base. At exact equality a finger is neither straight nor bent.
func (c *Classifier) IsBend(s *hand.Snapshot, finger hand.Finger) bool {
	toBase, toTip, ok := c.wristDistances(s, finger)
	if !ok {
		return false
	}
	return toBase > toTip
}

// IsThumbExtended compares the thumb's distal segment (intermediate base to
// tip) against its proximal segment (intermediate tip to intermediate base).
func (c *Classifier) IsThumbExtended(s *hand.Snapshot) bool {
	tip, ok := c.pose.Position2D(s, hand.Thumb, hand.Tip)
	if !ok {
		return false
	}
	ip, ok := c.pose.Position2D(s, hand.Thumb, hand.PIP)
	if !ok {
		return false
	}
	cmc, ok := c.pose.Position2D(s, hand.Thumb, hand.MCP)
	if !ok {
		return false
	}

	distal := distance(ip, tip)
	proximal := distance(cmc, ip)
	return distal > proximal*c.config.ThumbExtensionRatio
}

// IsTipTouching reports whether the tips of two fingers of the same hand touch.
func (c *Classifier) IsTipTouching(s *hand.Snapshot, finger1, finger2 hand.Finger) bool {
	a, ok := c.pose.Position2D(s, finger1, hand.Tip)
	if !ok {
		return false
	}
	b, ok := c.pose.Position2D(s, finger2, hand.Tip)
	if !ok {
		return false
	}
	return distance(a, b) < c.config.TipTouchDistance
}

// ExtendedFingerCount classifies the hand by its number of straight fingers.
func (c *Classifier) ExtendedFingerCount(s *hand.Snapshot) State {
	if !s.IsTracked() {
		return NotTracked
	}

	n := 0
	for _, f := range fiveFingers {
		if c.IsStraight(s, f) {
			n++
		}
	}
	return Extended(n)
}

// IsFingerSnapReady reports the pose before a snap: thumb, index and middle
// straight, ring and little bent, plus thumb/middle contact when configured.
func (c *Classifier) IsFingerSnapReady(s *hand.Snapshot) bool {
	ready := c.IsStraight(s, hand.Thumb) &&
		c.IsStraight(s, hand.Index) &&
		c.IsStraight(s, hand.Middle) &&
		c.IsBend(s, hand.Ring) &&
		c.IsBend(s, hand.Little)
	if !ready {
		return false
	}
	if c.config.RequireTipTouch {
		return c.IsTipTouching(s, hand.Thumb, hand.Middle)
	}
	return true
}

// IsFingerSnapDone reports the pose after a snap: as snap-ready, but with the
// middle finger bent.
func (c *Classifier) IsFingerSnapDone(s *hand.Snapshot) bool {
	return c.IsStraight(s, hand.Thumb) &&
		c.IsStraight(s, hand.Index) &&
		c.IsBend(s, hand.Middle) &&
		c.IsBend(s, hand.Ring) &&
		c.IsBend(s, hand.Little)
}

// IsAllFingersBent reports whether index, middle, ring and little are bent.
// The thumb is not considered.
func (c *Classifier) IsAllFingersBent(s *hand.Snapshot) bool {
	return c.IsBend(s, hand.Index) &&
		c.IsBend(s, hand.Middle) &&
		c.IsBend(s, hand.Ring) &&
		c.IsBend(s, hand.Little)
}

func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}
