package app

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Event kinds published by the app.
const (
	EventClap       = "clap"
	EventDoubleClap = "double_clap"
	EventSnap       = "snap"
)

// Frame is the classification of both hands after one update.
type Frame struct {
	Left            gesture.State `json:"left"`
	Right           gesture.State `json:"right"`
	DisplayedNumber int           `json:"displayedNumber"`
	FingerSnapReady bool          `json:"fingerSnapReady"`
	FingerSnapDone  bool          `json:"fingerSnapDone"`
	AllFingersBent  bool          `json:"allFingersBent"`
	FingersTouching bool          `json:"fingersTouching"`
	ClapCount       int           `json:"clapCount"`
	Clapped         bool          `json:"clapped"`
	DoubleClapped   bool          `json:"doubleClapped"`
	Time            time.Time     `json:"time"`
}

// Event is a discrete gesture: a clap, a double clap or a snap.
type Event struct {
	Kind      string    `json:"kind"`
	Side      string    `json:"side,omitempty"`
	ClapCount int       `json:"clapCount"`
	Time      time.Time `json:"time"`
	Session   string    `json:"session,omitempty"`
}
