package hand

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSide_Text(t *testing.T) {
	t.Run("encodes as lowercase name", func(t *testing.T) {
		data, err := json.Marshal(map[string]Side{"side": Right})
		if err != nil {
			t.Fatalf("marshal error = %v", err)
		}
		if string(data) != `{"side":"right"}` {
			t.Errorf("got %s, want {\"side\":\"right\"}", data)
		}
	})

	t.Run("accepts capitalised chirality", func(t *testing.T) {
		var s Side
		if err := s.UnmarshalText([]byte("Left")); err != nil {
			t.Fatalf("unmarshal error = %v", err)
		}
		if s != Left {
			t.Errorf("got %v, want left", s)
		}
	})

	t.Run("rejects unknown side", func(t *testing.T) {
		var s Side
		if err := s.UnmarshalText([]byte("both")); err == nil {
			t.Error("expected error for unknown side")
		}
	})
}

func TestTransform_UnmarshalJSON(t *testing.T) {
	t.Run("missing rotation is identity", func(t *testing.T) {
		var tr Transform
		if err := json.Unmarshal([]byte(`{"position":[0.1,0.2,0.3]}`), &tr); err != nil {
			t.Fatalf("unmarshal error = %v", err)
		}
		if tr.Position != (r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}) {
			t.Errorf("position = %v", tr.Position)
		}
		if tr.Rotation != Identity {
			t.Errorf("rotation = %v, want identity", tr.Rotation)
		}
	})

	t.Run("explicit rotation is kept", func(t *testing.T) {
		var tr Transform
		if err := json.Unmarshal([]byte(`{"position":[0,0,0],"rotation":[0,0.7071,0,0.7071]}`), &tr); err != nil {
			t.Fatalf("unmarshal error = %v", err)
		}
		if tr.Rotation != (Quat{0, 0.7071, 0, 0.7071}) {
			t.Errorf("rotation = %v", tr.Rotation)
		}
	})
}

func TestUpdate_Decode(t *testing.T) {
	line := `{"side":"left","tracked":true,"time":"2024-08-04T10:00:00Z","joints":{"wrist":{"position":[0,1,0]},"indexFingerTip":{"position":[0,1.17,0]}}}`

	var u Update
	if err := json.NewDecoder(strings.NewReader(line)).Decode(&u); err != nil {
		t.Fatalf("decode error = %v", err)
	}

	if u.Side != Left || !u.Tracked {
		t.Errorf("side/tracked = %v/%v, want left/true", u.Side, u.Tracked)
	}
	if !u.Time.Equal(time.Date(2024, 8, 4, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("time = %v", u.Time)
	}
	if len(u.Joints) != 2 {
		t.Errorf("expected 2 joints, got %d", len(u.Joints))
	}
	if u.Joints[JointIndexTip].Position.Y != 1.17 {
		t.Errorf("index tip y = %f, want 1.17", u.Joints[JointIndexTip].Position.Y)
	}
}

func TestNewSnapshot(t *testing.T) {
	t.Run("untracked update drops joints", func(t *testing.T) {
		u := OpenPalmPose.Update(Right, r3.Vec{}, time.Now())
		u.Tracked = false

		s := NewSnapshot(u)
		if s.Tracked {
			t.Error("snapshot should be untracked")
		}
		if len(s.Joints) != 0 {
			t.Errorf("expected no joints, got %d", len(s.Joints))
		}
		if s.Side != Right {
			t.Errorf("side = %v, want right", s.Side)
		}
	})

	t.Run("snapshot does not share the update's joint map", func(t *testing.T) {
		u := OpenPalmPose.Update(Left, r3.Vec{}, time.Now())
		s := NewSnapshot(u)

		delete(u.Joints, JointWrist)

		if _, ok := s.Joints[JointWrist]; !ok {
			t.Error("snapshot lost wrist after the update was mutated")
		}
	})

	t.Run("nil snapshot is not tracked", func(t *testing.T) {
		var s *Snapshot
		if s.IsTracked() {
			t.Error("nil snapshot reported tracked")
		}
	})
}

func TestPose_LeftIsMirrorOfRight(t *testing.T) {
	right := OpenPalmPose.Joints(Right, r3.Vec{})
	left := OpenPalmPose.Joints(Left, r3.Vec{})

	for name, rt := range right {
		lt, ok := left[name]
		if !ok {
			t.Fatalf("left hand missing %s", name)
		}
		if lt.Position.X != -rt.Position.X {
			t.Errorf("%s: left x = %f, want %f", name, lt.Position.X, -rt.Position.X)
		}
		if lt.Position.Y != rt.Position.Y {
			t.Errorf("%s: y differs between hands", name)
		}
	}
}
