package hand

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Pose describes which fingers of a synthetic hand are extended.
// It is used to build realistic joint sets for tests and demos.
type Pose struct {
	Thumb, Index, Middle, Ring, Little bool

	// TouchThumbToMiddle moves the thumb tip next to the middle tip while
	// keeping the thumb extended.
	TouchThumbToMiddle bool
}

// Preset poses.
var (
	OpenPalmPose  = Pose{Thumb: true, Index: true, Middle: true, Ring: true, Little: true}
	FistPose      = Pose{}
	PeacePose     = Pose{Index: true, Middle: true}
	SnapReadyPose = Pose{Thumb: true, Index: true, Middle: true}
	SnapDonePose  = Pose{Thumb: true, Index: true}
	SnapTouchPose = Pose{Thumb: true, Index: true, Middle: true, TouchThumbToMiddle: true}
	PointingPose  = Pose{Index: true}
	ThumbsUpPose  = Pose{Thumb: true}
)

// fingerColumn is the x offset of each finger from the wrist for a right hand.
var fingerColumn = map[Finger]float64{
	Index:  0.02,
	Middle: 0.0,
	Ring:   -0.02,
	Little: -0.04,
}

var fingerJoints = map[Finger][4]JointName{
	Index:  {JointIndexKnuckle, JointIndexIntermediateBase, JointIndexIntermediateTip, JointIndexTip},
	Middle: {JointMiddleKnuckle, JointMiddleIntermediateBase, JointMiddleIntermediateTip, JointMiddleTip},
	Ring:   {JointRingKnuckle, JointRingIntermediateBase, JointRingIntermediateTip, JointRingTip},
	Little: {JointLittleKnuckle, JointLittleIntermediateBase, JointLittleIntermediateTip, JointLittleTip},
}

// Joints builds a full joint set for the given pose. The wrist sits at
// origin and fingers point along +y; the left hand is the mirror image in x.
func (p Pose) Joints(side Side, origin r3.Vec) map[JointName]Transform {
	mirror := 1.0
	if side == Left {
		mirror = -1.0
	}

	joints := make(map[JointName]Transform, 24)
	put := func(name JointName, x, y, z float64) {
		joints[name] = Transform{
			Position: r3.Add(origin, r3.Vec{X: x * mirror, Y: y, Z: z}),
			Rotation: Identity,
		}
	}

	put(JointWrist, 0, 0, 0)
	put(JointForearmWrist, 0, -0.01, 0)
	put(JointForearmArm, 0, -0.2, 0)

	extended := map[Finger]bool{
		Index:  p.Index,
		Middle: p.Middle,
		Ring:   p.Ring,
		Little: p.Little,
	}
	for finger, names := range fingerJoints {
		x := fingerColumn[finger]
		put(names[0], x, 0.09, 0)
		put(names[1], x, 0.12, 0)
		if extended[finger] {
			put(names[2], x, 0.145, 0)
			put(names[3], x, 0.17, 0)
		} else {
			// Curled: the tip folds back below the intermediate base.
			put(names[2], x, 0.10, 0.02)
			put(names[3], x, 0.08, 0.03)
		}
	}

	put(JointThumbKnuckle, 0.03, 0.03, 0)
	put(JointThumbIntermediateBase, 0.05, 0.05, 0)
	switch {
	case p.Thumb && p.TouchThumbToMiddle:
		put(JointThumbIntermediateTip, 0.07, 0.07, 0)
		tipY := 0.17
		if !p.Middle {
			tipY = 0.08
		}
		put(JointThumbTip, fingerColumn[Middle]+0.005, tipY, 0)
	case p.Thumb:
		put(JointThumbIntermediateTip, 0.07, 0.07, 0)
		put(JointThumbTip, 0.09, 0.09, 0)
	default:
		put(JointThumbIntermediateTip, 0.06, 0.07, 0)
		put(JointThumbTip, 0.04, 0.07, 0)
	}

	return joints
}

// Update returns a tracked update carrying the pose's joints.
func (p Pose) Update(side Side, origin r3.Vec, at time.Time) Update {
	return Update{
		Side:    side,
		Tracked: true,
		Time:    at,
		Joints:  p.Joints(side, origin),
	}
}

// Snapshot returns a tracked snapshot of the pose.
func (p Pose) Snapshot(side Side, origin r3.Vec) *Snapshot {
	return NewSnapshot(p.Update(side, origin, time.Time{}))
}
