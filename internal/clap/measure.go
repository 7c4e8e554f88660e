package clap

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
)

// Sample holds the joint positions of both hands needed for one clap evaluation.
// The index knuckle stands in for the wrist and the middle knuckle for the palm.
type Sample struct {
	LeftWrist, RightWrist r3.Vec
	LeftPalm, RightPalm   r3.Vec

	LeftIndexTip, RightIndexTip r2.Vec
}

// Measurement is the per-frame input to the clap state machine.
type Measurement struct {
	Distance      float64
	PalmAlignment float64
	ApproachSpeed float64
}

// Satisfies reports whether all three closing conditions hold.
// NaN values, as produced by degenerate directions, never satisfy.
func (m Measurement) Satisfies(c Config) bool {
	return m.Distance < c.MaxDistance &&
		m.PalmAlignment > c.MinPalmAlignment &&
		m.ApproachSpeed > c.MinApproachSpeed
}

// TipDistance returns the 2D distance between the two index tips.
func (s Sample) TipDistance() float64 {
	return r2.Norm(r2.Sub(s.LeftIndexTip, s.RightIndexTip))
}

// Measure derives a Measurement from the current sample and the previous one
// taken dt seconds earlier.
//
// Velocities are finite differences. ApproachSpeed is the rate of change of
// the wrist separation: positive while the wrists move apart, so a clap
// registers on the rebound after contact.
func Measure(cur, prev Sample, dt float64) Measurement {
	leftDir := r3.Unit(r3.Sub(cur.LeftPalm, cur.LeftWrist))
	rightDir := r3.Unit(r3.Sub(cur.RightWrist, cur.RightPalm))

	leftVel := r3.Scale(1/dt, r3.Sub(cur.LeftWrist, prev.LeftWrist))
	rightVel := r3.Scale(1/dt, r3.Sub(cur.RightWrist, prev.RightWrist))
	relative := r3.Sub(leftVel, rightVel)

	return Measurement{
		Distance:      r3.Norm(r3.Sub(cur.LeftWrist, cur.RightWrist)),
		PalmAlignment: r3.Dot(leftDir, rightDir),
		ApproachSpeed: -r3.Dot(r3.Unit(r3.Sub(cur.RightWrist, cur.LeftWrist)), relative),
	}
}

// sampler extracts Samples from hand snapshots.
type sampler struct {
	pose *hand.Extractor
}

func (s sampler) sample(left, right *hand.Snapshot) (Sample, bool) {
	var out Sample
	var ok bool

	if out.LeftWrist, ok = s.pose.Position3D(left, hand.Index, hand.MCP); !ok {
		return Sample{}, false
	}
	if out.RightWrist, ok = s.pose.Position3D(right, hand.Index, hand.MCP); !ok {
		return Sample{}, false
	}
	if out.LeftPalm, ok = s.pose.Position3D(left, hand.Middle, hand.MCP); !ok {
		return Sample{}, false
	}
	if out.RightPalm, ok = s.pose.Position3D(right, hand.Middle, hand.MCP); !ok {
		return Sample{}, false
	}
	if out.LeftIndexTip, ok = s.pose.Position2D(left, hand.Index, hand.Tip); !ok {
		return Sample{}, false
	}
	if out.RightIndexTip, ok = s.pose.Position2D(right, hand.Index, hand.Tip); !ok {
		return Sample{}, false
	}

	return out, true
}
