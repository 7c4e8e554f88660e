package testdata

import (
	"embed"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
)

//go:embed recordings/*
var recordingsFS embed.FS

// LoadRecording returns the raw JSONL bytes of an embedded recording.
func LoadRecording(name string) ([]byte, error) {
	data, err := recordingsFS.ReadFile("recordings/" + name)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	return data, nil
}

// Base is where the midpoint between the two hands sits.
var Base = r3.Vec{X: 0, Y: 1.2, Z: -0.5}

// Apart is the half-separation at which the hands are clearly not clapping.
// The index knuckles are then 0.30m apart.
const Apart = 0.13

// Frame is one timestamped pair of hand updates.
type Frame struct {
	Time        time.Time
	Left, Right hand.Update
}

// Updates returns the left and right updates in delivery order.
func (f Frame) Updates() []hand.Update {
	return []hand.Update{f.Left, f.Right}
}

// HandsAt places both hands in pose with the wrists s metres either side of
// Base along x, palms facing. The index knuckles are 2s+0.04 apart.
func HandsAt(pose hand.Pose, s float64, at time.Time) Frame {
	return Frame{
		Time:  at,
		Left:  pose.Update(hand.Left, r3.Add(Base, r3.Vec{X: -s}), at),
		Right: pose.Update(hand.Right, r3.Add(Base, r3.Vec{X: s}), at),
	}
}

// ClapSequence returns frames of one clap: hands apart at start, contact one
// step later, then separating at 0.3m/s for hold, then apart again.
// With a 10ms step the clap confirms 80ms after start.
func ClapSequence(start time.Time, step, hold time.Duration) []Frame {
	frames := []Frame{
		HandsAt(hand.OpenPalmPose, Apart, start),
		HandsAt(hand.OpenPalmPose, 0, start.Add(step)),
	}

	for k := 1; time.Duration(k)*step <= hold; k++ {
		at := start.Add(time.Duration(k+1) * step)
		s := 0.15 * (time.Duration(k) * step).Seconds()
		frames = append(frames, HandsAt(hand.OpenPalmPose, s, at))
	}

	last := frames[len(frames)-1].Time
	return append(frames, HandsAt(hand.OpenPalmPose, Apart, last.Add(step)))
}

// SnapSequence returns right-hand snap-ready frames followed by snap-done
// frames, with the left hand held open.
func SnapSequence(start time.Time, step time.Duration, ready, done int) []Frame {
	frames := make([]Frame, 0, ready+done)
	for i := 0; i < ready+done; i++ {
		at := start.Add(time.Duration(i) * step)
		pose := hand.SnapReadyPose
		if i >= ready {
			pose = hand.SnapDonePose
		}
		frames = append(frames, Frame{
			Time:  at,
			Left:  hand.OpenPalmPose.Update(hand.Left, r3.Add(Base, r3.Vec{X: -0.3}), at),
			Right: pose.Update(hand.Right, r3.Add(Base, r3.Vec{X: 0.3}), at),
		})
	}
	return frames
}
