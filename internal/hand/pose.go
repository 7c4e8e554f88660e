package hand

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrNotTracked is returned when a joint is requested from an untracked hand.
	ErrNotTracked = errors.New("hand not tracked")
	// ErrInvalidJoint is returned for a (finger, joint) pair outside the mapping table.
	ErrInvalidJoint = errors.New("invalid joint combination")
	// ErrMissingJoint is returned when the mapped joint is absent from the snapshot.
	ErrMissingJoint = errors.New("joint missing")
)

var jointLookupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mudra_joint_lookup_failures_total",
	Help: "Joint lookups that resolved to unavailable, by reason.",
}, []string{"reason"})

type jointKey struct {
	finger Finger
	kind   JointKind
}

// shapeJoints maps the joints used by the finger-shape tests.
var shapeJoints = map[jointKey]JointName{
	{Thumb, Tip}:  JointThumbTip,
	{Thumb, PIP}:  JointThumbIntermediateBase,
	{Thumb, MCP}:  JointThumbIntermediateTip,
	{Index, Tip}:  JointIndexTip,
	{Index, PIP}:  JointIndexIntermediateBase,
	{Middle, Tip}: JointMiddleTip,
	{Middle, PIP}: JointMiddleIntermediateBase,
	{Ring, Tip}:   JointRingTip,
	{Ring, PIP}:   JointRingIntermediateBase,
	{Little, Tip}: JointLittleTip,
	{Little, PIP}: JointLittleIntermediateBase,
	{Wrist, Tip}:  JointWrist,
}

// spatialJoints extends shapeJoints with the knuckles used for two-hand tests.
var spatialJoints = func() map[jointKey]JointName {
	m := make(map[jointKey]JointName, len(shapeJoints)+4)
	for k, v := range shapeJoints {
		m[k] = v
	}
	m[jointKey{Index, MCP}] = JointIndexKnuckle
	m[jointKey{Middle, MCP}] = JointMiddleKnuckle
	m[jointKey{Ring, MCP}] = JointRingKnuckle
	m[jointKey{Little, MCP}] = JointLittleKnuckle
	return m
}()

// Extractor resolves (finger, joint kind) pairs to positions on a snapshot.
// Every lookup either yields a position or "unavailable"; it never panics.
type Extractor struct {
	table  map[jointKey]JointName
	logger *zap.Logger
}

// NewShapeExtractor returns an Extractor over the joints used by single-hand shape tests.
func NewShapeExtractor(logger *zap.Logger) *Extractor {
	return newExtractor(shapeJoints, logger)
}

// NewSpatialExtractor returns an Extractor that additionally resolves finger knuckles.
func NewSpatialExtractor(logger *zap.Logger) *Extractor {
	return newExtractor(spatialJoints, logger)
}

func newExtractor(table map[jointKey]JointName, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{table: table, logger: logger}
}

// JointName returns the physical joint for a (finger, kind) pair.
func (e *Extractor) JointName(finger Finger, kind JointKind) (JointName, bool) {
	name, ok := e.table[jointKey{finger, kind}]
	return name, ok
}

// Lookup returns the transform for a (finger, kind) pair on s.
func (e *Extractor) Lookup(s *Snapshot, finger Finger, kind JointKind) (Transform, error) {
	if !s.IsTracked() {
		return Transform{}, ErrNotTracked
	}

	name, ok := e.JointName(finger, kind)
	if !ok {
		return Transform{}, fmt.Errorf("%w: %s %s", ErrInvalidJoint, finger, kind)
	}

	t, ok := s.Joints[name]
	if !ok {
		return Transform{}, fmt.Errorf("%w: %s hand %s", ErrMissingJoint, s.Side, name)
	}

	return t, nil
}

// Position3D returns the joint position, or false if it is unavailable.
func (e *Extractor) Position3D(s *Snapshot, finger Finger, kind JointKind) (r3.Vec, bool) {
	t, err := e.Lookup(s, finger, kind)
	if err != nil {
		e.unavailable(s, finger, kind, err)
		return r3.Vec{}, false
	}
	return t.Position, true
}

// Position2D returns the joint position projected onto the x,y plane.
func (e *Extractor) Position2D(s *Snapshot, finger Finger, kind JointKind) (r2.Vec, bool) {
	p, ok := e.Position3D(s, finger, kind)
	if !ok {
		return r2.Vec{}, false
	}
	return r2.Vec{X: p.X, Y: p.Y}, true
}

func (e *Extractor) unavailable(s *Snapshot, finger Finger, kind JointKind, err error) {
	reason := "missing"
	switch {
	case errors.Is(err, ErrNotTracked):
		reason = "not_tracked"
	case errors.Is(err, ErrInvalidJoint):
		reason = "invalid"
	}
	jointLookupFailures.WithLabelValues(reason).Inc()

	side := "unknown"
	if s != nil {
		side = s.Side.String()
	}
	e.logger.Debug("joint unavailable",
		zap.String("side", side),
		zap.Stringer("finger", finger),
		zap.Stringer("joint", kind),
		zap.Error(err),
	)
}
