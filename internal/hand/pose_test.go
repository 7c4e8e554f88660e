package hand

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestExtractor_Lookup(t *testing.T) {
	shape := NewShapeExtractor(zap.NewNop())
	spatial := NewSpatialExtractor(zap.NewNop())
	snap := OpenPalmPose.Snapshot(Right, r3.Vec{X: 0.1, Y: 1.0, Z: -0.4})

	t.Run("untracked hand", func(t *testing.T) {
		_, err := shape.Lookup(Untracked(Left), Index, Tip)
		if !errors.Is(err, ErrNotTracked) {
			t.Errorf("expected ErrNotTracked, got %v", err)
		}
	})

	t.Run("nil snapshot", func(t *testing.T) {
		_, err := shape.Lookup(nil, Index, Tip)
		if !errors.Is(err, ErrNotTracked) {
			t.Errorf("expected ErrNotTracked, got %v", err)
		}
	})

	t.Run("knuckle is not in the shape table", func(t *testing.T) {
		_, err := shape.Lookup(snap, Index, MCP)
		if !errors.Is(err, ErrInvalidJoint) {
			t.Errorf("expected ErrInvalidJoint, got %v", err)
		}
	})

	t.Run("knuckle resolves in the spatial table", func(t *testing.T) {
		tr, err := spatial.Lookup(snap, Index, MCP)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr != snap.Joints[JointIndexKnuckle] {
			t.Errorf("got %v, want index knuckle", tr)
		}
	})

	t.Run("thumb knuckle kind maps to intermediate tip", func(t *testing.T) {
		name, ok := shape.JointName(Thumb, MCP)
		if !ok || name != JointThumbIntermediateTip {
			t.Errorf("got %q/%v, want %q", name, ok, JointThumbIntermediateTip)
		}
	})

	t.Run("dip is unmapped everywhere", func(t *testing.T) {
		for _, f := range Fingers {
			if _, ok := spatial.JointName(f, DIP); ok {
				t.Errorf("%s dip should be unmapped", f)
			}
		}
	})

	t.Run("joint missing from snapshot", func(t *testing.T) {
		partial := OpenPalmPose.Snapshot(Right, r3.Vec{})
		delete(partial.Joints, JointRingTip)

		_, err := shape.Lookup(partial, Ring, Tip)
		if !errors.Is(err, ErrMissingJoint) {
			t.Errorf("expected ErrMissingJoint, got %v", err)
		}
	})
}

func TestExtractor_Positions(t *testing.T) {
	e := NewShapeExtractor(nil)
	snap := NewSnapshot(Update{
		Side:    Left,
		Tracked: true,
		Joints: map[JointName]Transform{
			JointWrist: At(0.1, 0.2, 0.3),
		},
	})

	t.Run("3D keeps all axes", func(t *testing.T) {
		p, ok := e.Position3D(snap, Wrist, Tip)
		if !ok {
			t.Fatal("wrist should be available")
		}
		if p != (r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}) {
			t.Errorf("got %v", p)
		}
	})

	t.Run("2D drops z", func(t *testing.T) {
		p, ok := e.Position2D(snap, Wrist, Tip)
		if !ok {
			t.Fatal("wrist should be available")
		}
		if p != (r2.Vec{X: 0.1, Y: 0.2}) {
			t.Errorf("got %v", p)
		}
	})

	t.Run("unavailable joint reports false", func(t *testing.T) {
		if _, ok := e.Position2D(snap, Index, Tip); ok {
			t.Error("index tip should be unavailable")
		}
		if _, ok := e.Position3D(Untracked(Left), Wrist, Tip); ok {
			t.Error("untracked wrist should be unavailable")
		}
	})
}
