// Package hand provides the tracked-hand data model and joint lookups for gesture classification.
package hand

import (
	"encoding/json"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Side identifies which hand an update belongs to (chirality).
type Side int

const (
	Left Side = iota
	Right
)

// String returns "left" or "right".
func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	switch s {
	case Left, Right:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("invalid side %d", int(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left", "Left":
		*s = Left
	case "right", "Right":
		*s = Right
	default:
		return fmt.Errorf("invalid side %q", string(text))
	}
	return nil
}

// Finger names a finger of the hand. Wrist is only used as a reference point.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Little
	Wrist
)

// Fingers lists the five real fingers from thumb to little.
var Fingers = [5]Finger{Thumb, Index, Middle, Ring, Little}

var fingerNames = [...]string{"thumb", "index", "middle", "ring", "little", "wrist"}

func (f Finger) String() string {
	if f < 0 || int(f) >= len(fingerNames) {
		return fmt.Sprintf("finger(%d)", int(f))
	}
	return fingerNames[f]
}

// JointKind names a position along a finger.
type JointKind int

const (
	Tip JointKind = iota
	PIP           // intermediate base
	DIP
	MCP // knuckle
)

var jointKindNames = [...]string{"tip", "pip", "dip", "mcp"}

func (k JointKind) String() string {
	if k < 0 || int(k) >= len(jointKindNames) {
		return fmt.Sprintf("joint(%d)", int(k))
	}
	return jointKindNames[k]
}

// JointName is the name of a physical skeleton joint as supplied by the tracking provider.
type JointName string

// Skeleton joints supplied by the tracking provider.
const (
	JointWrist JointName = "wrist"

	JointThumbKnuckle          JointName = "thumbKnuckle"
	JointThumbIntermediateBase JointName = "thumbIntermediateBase"
	JointThumbIntermediateTip  JointName = "thumbIntermediateTip"
	JointThumbTip              JointName = "thumbTip"

	JointIndexMetacarpal       JointName = "indexFingerMetacarpal"
	JointIndexKnuckle          JointName = "indexFingerKnuckle"
	JointIndexIntermediateBase JointName = "indexFingerIntermediateBase"
	JointIndexIntermediateTip  JointName = "indexFingerIntermediateTip"
	JointIndexTip              JointName = "indexFingerTip"

	JointMiddleMetacarpal       JointName = "middleFingerMetacarpal"
	JointMiddleKnuckle          JointName = "middleFingerKnuckle"
	JointMiddleIntermediateBase JointName = "middleFingerIntermediateBase"
	JointMiddleIntermediateTip  JointName = "middleFingerIntermediateTip"
	JointMiddleTip              JointName = "middleFingerTip"

	JointRingMetacarpal       JointName = "ringFingerMetacarpal"
	JointRingKnuckle          JointName = "ringFingerKnuckle"
	JointRingIntermediateBase JointName = "ringFingerIntermediateBase"
	JointRingIntermediateTip  JointName = "ringFingerIntermediateTip"
	JointRingTip              JointName = "ringFingerTip"

	JointLittleMetacarpal       JointName = "littleFingerMetacarpal"
	JointLittleKnuckle          JointName = "littleFingerKnuckle"
	JointLittleIntermediateBase JointName = "littleFingerIntermediateBase"
	JointLittleIntermediateTip  JointName = "littleFingerIntermediateTip"
	JointLittleTip              JointName = "littleFingerTip"

	JointForearmWrist JointName = "forearmWrist"
	JointForearmArm   JointName = "forearmArm"
)

// Quat is a rotation quaternion stored as x, y, z, w.
type Quat [4]float64

// Identity is the identity rotation.
var Identity = Quat{0, 0, 0, 1}

// Transform is a rigid transform of one joint relative to the world anchor.
// Positions are in metres.
type Transform struct {
	Position r3.Vec
	Rotation Quat
}

// At returns a transform at the given position with identity rotation.
func At(x, y, z float64) Transform {
	return Transform{Position: r3.Vec{X: x, Y: y, Z: z}, Rotation: Identity}
}

type jsonTransform struct {
	Position [3]float64 `json:"position"`
	Rotation *Quat      `json:"rotation,omitempty"`
}

// MarshalJSON encodes the transform as {"position":[x,y,z],"rotation":[x,y,z,w]}.
func (t Transform) MarshalJSON() ([]byte, error) {
	rot := t.Rotation
	return json.Marshal(jsonTransform{
		Position: [3]float64{t.Position.X, t.Position.Y, t.Position.Z},
		Rotation: &rot,
	})
}

// UnmarshalJSON decodes a transform. A missing rotation decodes as identity.
func (t *Transform) UnmarshalJSON(data []byte) error {
	var raw jsonTransform
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Position = r3.Vec{X: raw.Position[0], Y: raw.Position[1], Z: raw.Position[2]}
	t.Rotation = Identity
	if raw.Rotation != nil {
		t.Rotation = *raw.Rotation
	}
	return nil
}

// Update is one hand-tracking message from the joint frame provider.
// A zero Time means the receiver should stamp it with its own clock.
type Update struct {
	Side    Side                    `json:"side"`
	Tracked bool                    `json:"tracked"`
	Time    time.Time               `json:"time"`
	Joints  map[JointName]Transform `json:"joints,omitempty"`
}

// Snapshot holds the most recent joint set for one hand.
// It is replaced wholesale on every update and never merged with older data.
type Snapshot struct {
	Side    Side
	Tracked bool
	Time    time.Time
	Joints  map[JointName]Transform
}

// NewSnapshot builds a snapshot from an update. Untracked updates produce an
// empty snapshot regardless of any joints they carry.
func NewSnapshot(u Update) *Snapshot {
	if !u.Tracked {
		return Untracked(u.Side)
	}

	joints := make(map[JointName]Transform, len(u.Joints))
	for name, t := range u.Joints {
		joints[name] = t
	}

	return &Snapshot{
		Side:    u.Side,
		Tracked: true,
		Time:    u.Time,
		Joints:  joints,
	}
}

// Untracked returns the empty snapshot for a hand that is not tracked.
func Untracked(side Side) *Snapshot {
	return &Snapshot{Side: side}
}

// IsTracked reports whether s is non-nil and tracked.
func (s *Snapshot) IsTracked() bool {
	return s != nil && s.Tracked
}
