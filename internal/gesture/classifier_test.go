package gesture

import (
	"testing"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/hand"
)

var origin = r3.Vec{X: 0.2, Y: 1.1, Z: -0.4}

func newTestClassifier() *Classifier {
	return NewClassifier(DefaultConfig(), zap.NewNop())
}

func TestClassifier_IsStraightAndBend(t *testing.T) {
	c := newTestClassifier()

	t.Run("open palm fingers are straight", func(t *testing.T) {
		s := hand.OpenPalmPose.Snapshot(hand.Right, origin)
		for _, f := range hand.Fingers {
			if !c.IsStraight(s, f) {
				t.Errorf("%s should be straight", f)
			}
		}
		for _, f := range []hand.Finger{hand.Index, hand.Middle, hand.Ring, hand.Little} {
			if c.IsBend(s, f) {
				t.Errorf("%s should not be bent", f)
			}
		}
	})

	t.Run("fist fingers are bent", func(t *testing.T) {
		s := hand.FistPose.Snapshot(hand.Left, origin)
		for _, f := range []hand.Finger{hand.Index, hand.Middle, hand.Ring, hand.Little} {
			if !c.IsBend(s, f) {
				t.Errorf("%s should be bent", f)
			}
			if c.IsStraight(s, f) {
				t.Errorf("%s should not be straight", f)
			}
		}
		if c.IsThumbExtended(s) {
			t.Error("folded thumb should not be extended")
		}
	})

	t.Run("equal distances are neither straight nor bent", func(t *testing.T) {
		s := hand.NewSnapshot(hand.Update{
			Side:    hand.Right,
			Tracked: true,
			Joints: map[hand.JointName]hand.Transform{
				hand.JointWrist:                 hand.At(0, 0, 0),
				hand.JointIndexIntermediateBase: hand.At(0, 0.12, 0),
				hand.JointIndexTip:              hand.At(0.12, 0, 0),
			},
		})

		if c.IsStraight(s, hand.Index) {
			t.Error("IsStraight should be false at exact equality")
		}
		if c.IsBend(s, hand.Index) {
			t.Error("IsBend should be false at exact equality")
		}
	})

	t.Run("z is ignored", func(t *testing.T) {
		s := hand.NewSnapshot(hand.Update{
			Side:    hand.Right,
			Tracked: true,
			Joints: map[hand.JointName]hand.Transform{
				hand.JointWrist:                 hand.At(0, 0, 0),
				hand.JointIndexIntermediateBase: hand.At(0, 0.10, 0),
				hand.JointIndexTip:              hand.At(0, 0.05, 0.5),
			},
		})

		if !c.IsBend(s, hand.Index) {
			t.Error("tip far away in z but close in x,y should still be bent")
		}
	})

	t.Run("missing joints resolve to false", func(t *testing.T) {
		s := hand.OpenPalmPose.Snapshot(hand.Right, origin)
		delete(s.Joints, hand.JointWrist)

		for _, f := range []hand.Finger{hand.Index, hand.Middle, hand.Ring, hand.Little} {
			if c.IsStraight(s, f) || c.IsBend(s, f) {
				t.Errorf("%s: expected false without a wrist", f)
			}
		}
	})

	t.Run("wrist is not a finger", func(t *testing.T) {
		s := hand.OpenPalmPose.Snapshot(hand.Right, origin)
		if c.IsStraight(s, hand.Wrist) || c.IsBend(s, hand.Wrist) {
			t.Error("wrist has no intermediate base and should resolve to false")
		}
	})
}

func TestClassifier_IsThumbExtended(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name     string
		tip      hand.Transform
		expected bool
	}{
		{
			// distal 0.06, proximal 0.03
			name:     "ratio 2 is extended",
			tip:      hand.At(0, 0.09, 0),
			expected: true,
		},
		{
			// distal 0.04, proximal 0.03
			name:     "ratio below 1.5 is not extended",
			tip:      hand.At(0, 0.07, 0),
			expected: false,
		},
		{
			name:     "folded tip is not extended",
			tip:      hand.At(0, 0.04, 0),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := hand.NewSnapshot(hand.Update{
				Side:    hand.Left,
				Tracked: true,
				Joints: map[hand.JointName]hand.Transform{
					hand.JointThumbIntermediateTip:  hand.At(0, 0, 0),
					hand.JointThumbIntermediateBase: hand.At(0, 0.03, 0),
					hand.JointThumbTip:              tt.tip,
				},
			})

			if got := c.IsThumbExtended(s); got != tt.expected {
				t.Errorf("IsThumbExtended() = %v, want %v", got, tt.expected)
			}
		})
	}

	t.Run("thumb straight delegates to extension test", func(t *testing.T) {
		s := hand.ThumbsUpPose.Snapshot(hand.Right, origin)
		if !c.IsStraight(s, hand.Thumb) {
			t.Error("thumbs-up thumb should be straight")
		}
	})
}

func TestClassifier_IsTipTouching(t *testing.T) {
	c := newTestClassifier()

	if !c.IsTipTouching(hand.SnapTouchPose.Snapshot(hand.Right, origin), hand.Thumb, hand.Middle) {
		t.Error("thumb and middle tips should touch")
	}
	if c.IsTipTouching(hand.SnapReadyPose.Snapshot(hand.Right, origin), hand.Thumb, hand.Middle) {
		t.Error("thumb and middle tips should be apart")
	}
	if c.IsTipTouching(hand.Untracked(hand.Right), hand.Thumb, hand.Middle) {
		t.Error("untracked hand cannot touch")
	}
}

func TestClassifier_ExtendedFingerCount(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name     string
		snap     *hand.Snapshot
		expected State
	}{
		{"open palm", hand.OpenPalmPose.Snapshot(hand.Right, origin), Extended(5)},
		{"fist", hand.FistPose.Snapshot(hand.Right, origin), Closed},
		{"peace", hand.PeacePose.Snapshot(hand.Left, origin), Extended(2)},
		{"pointing", hand.PointingPose.Snapshot(hand.Left, origin), Extended(1)},
		{"snap ready", hand.SnapReadyPose.Snapshot(hand.Right, origin), Extended(3)},
		{"untracked", hand.Untracked(hand.Right), NotTracked},
		{"nil", nil, NotTracked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ExtendedFingerCount(tt.snap)
			if got != tt.expected {
				t.Errorf("ExtendedFingerCount() = %v, want %v", got, tt.expected)
			}
			if got.Count() > 5 {
				t.Errorf("count %d exceeds 5", got.Count())
			}
			if (got.Count() == 0) != (got == Closed || got == NotTracked) {
				t.Errorf("zero count must mean closed or not tracked, got %v", got)
			}
		})
	}

	t.Run("tracked hand with no joints is closed", func(t *testing.T) {
		s := hand.NewSnapshot(hand.Update{Side: hand.Left, Tracked: true})
		if got := c.ExtendedFingerCount(s); got != Closed {
			t.Errorf("got %v, want closed", got)
		}
	})
}

func TestClassifier_FingerSnap(t *testing.T) {
	c := newTestClassifier()

	ready := hand.SnapReadyPose.Snapshot(hand.Right, origin)
	done := hand.SnapDonePose.Snapshot(hand.Right, origin)

	t.Run("ready pose", func(t *testing.T) {
		if !c.IsFingerSnapReady(ready) {
			t.Error("expected snap ready")
		}
		if c.IsFingerSnapDone(ready) {
			t.Error("ready pose must not be done")
		}
	})

	t.Run("done pose", func(t *testing.T) {
		if c.IsFingerSnapReady(done) {
			t.Error("done pose must not be ready")
		}
		if !c.IsFingerSnapDone(done) {
			t.Error("expected snap done")
		}
	})

	t.Run("ready implies its finger shape", func(t *testing.T) {
		poses := []hand.Pose{hand.OpenPalmPose, hand.FistPose, hand.SnapReadyPose, hand.SnapDonePose, hand.SnapTouchPose, hand.PeacePose}
		for _, p := range poses {
			s := p.Snapshot(hand.Right, origin)
			if !c.IsFingerSnapReady(s) {
				continue
			}
			if !c.IsStraight(s, hand.Thumb) || !c.IsStraight(s, hand.Index) || !c.IsStraight(s, hand.Middle) {
				t.Errorf("%+v: ready without thumb/index/middle straight", p)
			}
			if !c.IsBend(s, hand.Ring) || !c.IsBend(s, hand.Little) {
				t.Errorf("%+v: ready without ring/little bent", p)
			}
		}
	})

	t.Run("flipping the middle finger swaps ready and done", func(t *testing.T) {
		flipped := hand.SnapReadyPose
		flipped.Middle = false

		s := flipped.Snapshot(hand.Right, origin)
		before := [2]bool{c.IsFingerSnapReady(ready), c.IsFingerSnapDone(ready)}
		after := [2]bool{c.IsFingerSnapReady(s), c.IsFingerSnapDone(s)}

		if before != [2]bool{true, false} || after != [2]bool{false, true} {
			t.Errorf("before %v after %v: expected ready and done to swap", before, after)
		}
	})

	t.Run("tip touch requirement", func(t *testing.T) {
		strict := DefaultConfig()
		strict.RequireTipTouch = true
		sc := NewClassifier(strict, nil)

		if sc.IsFingerSnapReady(ready) {
			t.Error("apart tips must not be ready when touch is required")
		}
		if !sc.IsFingerSnapReady(hand.SnapTouchPose.Snapshot(hand.Right, origin)) {
			t.Error("touching tips should be ready when touch is required")
		}
		if !c.IsFingerSnapReady(hand.SnapTouchPose.Snapshot(hand.Right, origin)) {
			t.Error("touching tips should also be ready without the requirement")
		}
	})

	t.Run("untracked hand is never ready or done", func(t *testing.T) {
		s := hand.Untracked(hand.Right)
		if c.IsFingerSnapReady(s) || c.IsFingerSnapDone(s) {
			t.Error("untracked hand produced a snap predicate")
		}
	})
}

func TestClassifier_IsAllFingersBent(t *testing.T) {
	c := newTestClassifier()

	if !c.IsAllFingersBent(hand.FistPose.Snapshot(hand.Left, origin)) {
		t.Error("fist should be all bent")
	}
	if !c.IsAllFingersBent(hand.ThumbsUpPose.Snapshot(hand.Left, origin)) {
		t.Error("thumb is excluded from all-bent")
	}
	if c.IsAllFingersBent(hand.PointingPose.Snapshot(hand.Left, origin)) {
		t.Error("pointing hand is not all bent")
	}
	if c.IsAllFingersBent(hand.Untracked(hand.Left)) {
		t.Error("untracked hand is not all bent")
	}
}

func TestClassifier_SetConfig(t *testing.T) {
	c := newTestClassifier()

	cfg := c.Config()
	cfg.RequireTipTouch = true
	c.SetConfig(cfg)

	if !c.Config().RequireTipTouch {
		t.Error("SetConfig did not apply")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero straight ratio", func(c *Config) { c.StraightRatio = 0 }},
		{"negative thumb ratio", func(c *Config) { c.ThumbExtensionRatio = -1.5 }},
		{"zero tip touch distance", func(c *Config) { c.TipTouchDistance = 0 }},
		{"negative tip touch distance", func(c *Config) { c.TipTouchDistance = -0.01 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should reject the config")
			}
		})
	}
}
