// Package clap detects claps and double claps from two tracked hands across frames.
package clap

import (
	"fmt"
	"time"
)

// MissingDataPolicy selects how a frame without the required joints is treated.
type MissingDataPolicy int

const (
	// ResetOnMissing treats a frame with missing joints as a broken condition:
	// an approaching window is abandoned and velocity history is dropped.
	ResetOnMissing MissingDataPolicy = iota
	// SkipOnMissing ignores the frame and leaves all state untouched.
	SkipOnMissing
)

func (p MissingDataPolicy) String() string {
	switch p {
	case ResetOnMissing:
		return "reset"
	case SkipOnMissing:
		return "skip"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseMissingDataPolicy parses "reset" or "skip". An empty string is "reset".
func ParseMissingDataPolicy(s string) (MissingDataPolicy, error) {
	switch s {
	case "", "reset":
		return ResetOnMissing, nil
	case "skip":
		return SkipOnMissing, nil
	default:
		return 0, fmt.Errorf("unknown missing data policy %q", s)
	}
}

// Config holds the thresholds and windows of the clap detector.
type Config struct {
	// MaxDistance is the largest wrist-proxy distance that counts as close (metres).
	MaxDistance float64
	// MinPalmAlignment is the exclusive lower bound on the palm direction dot product.
	MinPalmAlignment float64
	// MinApproachSpeed is the exclusive lower bound on approach speed (metres/second).
	MinApproachSpeed float64

	// MinHold and MaxHold bound, exclusively, how long the condition must
	// hold before a clap is confirmed.
	MinHold time.Duration
	MaxHold time.Duration

	// DoubleClapWindow is the longest gap between two claps of a double clap.
	DoubleClapWindow time.Duration
	// FlagHold is how long the clapped and double-clapped flags stay raised.
	FlagHold time.Duration

	// TouchDistance is the 2D index-tip distance below which fingers touch.
	TouchDistance float64

	MissingData MissingDataPolicy
}

// DefaultConfig returns the standard clap thresholds.
func DefaultConfig() Config {
	return Config{
		MaxDistance:      0.15,
		MinPalmAlignment: -0.7,
		MinApproachSpeed: 0.2,
		MinHold:          50 * time.Millisecond,
		MaxHold:          200 * time.Millisecond,
		DoubleClapWindow: 500 * time.Millisecond,
		FlagHold:         500 * time.Millisecond,
		TouchDistance:    0.1,
		MissingData:      ResetOnMissing,
	}
}

// Validate checks that the windows are well ordered.
func (c Config) Validate() error {
	if c.MaxDistance <= 0 {
		return fmt.Errorf("max distance must be positive, got %v", c.MaxDistance)
	}
	if c.MinHold < 0 || c.MaxHold <= c.MinHold {
		return fmt.Errorf("hold window must satisfy 0 <= min < max, got [%v, %v]", c.MinHold, c.MaxHold)
	}
	if c.DoubleClapWindow <= 0 {
		return fmt.Errorf("double clap window must be positive, got %v", c.DoubleClapWindow)
	}
	if c.FlagHold <= 0 {
		return fmt.Errorf("flag hold must be positive, got %v", c.FlagHold)
	}
	return nil
}
