package clap

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/hand"
)

// State is the phase of the clap state machine.
type State int

const (
	Idle State = iota
	Approaching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Approaching:
		return "approaching"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventKind identifies a discrete event emitted by the detector.
type EventKind int

const (
	Clap EventKind = iota
	DoubleClap
)

func (k EventKind) String() string {
	switch k {
	case Clap:
		return "clap"
	case DoubleClap:
		return "double_clap"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a confirmed clap or double clap.
type Event struct {
	Kind EventKind `json:"kind"`
	// Count is the running clap count after the event.
	Count int       `json:"count"`
	Time  time.Time `json:"time"`
}

// Result describes what one frame did to the detector.
type Result struct {
	// Evaluated is false when the frame was skipped for missing joints, as
	// the first frame of a history, or for a non-increasing timestamp.
	Evaluated       bool
	FingersTouching bool
	Measurement     Measurement
	Events          []Event
}

var windowOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mudra_clap_windows_total",
	Help: "Clap approach windows by outcome.",
}, []string{"outcome"})

// Detector is a stateful clap debouncer. It is not safe for concurrent use;
// frames must be fed from a single goroutine in timestamp order.
type Detector struct {
	config  Config
	sampler sampler
	logger  *zap.Logger

	prev     Sample
	prevTime time.Time
	hasPrev  bool

	state     State
	closeTime time.Time
	// rearm blocks a new window until the closing condition breaks once.
	rearm bool

	firstClap    time.Time
	hasFirstClap bool

	count              int
	touching           bool
	clappedUntil       time.Time
	doubleClappedUntil time.Time
}

// NewDetector creates a Detector with the given configuration.
func NewDetector(config Config, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		config:  config,
		sampler: sampler{pose: hand.NewSpatialExtractor(logger)},
		logger:  logger.Named("clap"),
	}
}

// Config returns the active configuration.
func (d *Detector) Config() Config {
	return d.config
}

// SetConfig replaces the configuration. Detector state is kept.
func (d *Detector) SetConfig(config Config) {
	d.config = config
}

// Process evaluates one frame of both hands at time now.
func (d *Detector) Process(left, right *hand.Snapshot, now time.Time) Result {
	cur, ok := d.sampler.sample(left, right)
	if !ok {
		if d.config.MissingData == ResetOnMissing {
			d.breakWindow()
			d.hasPrev = false
			d.touching = false
		}
		return Result{FingersTouching: d.touching}
	}

	d.touching = cur.TipDistance() < d.config.TouchDistance

	if !d.hasPrev {
		d.prev, d.prevTime, d.hasPrev = cur, now, true
		return Result{FingersTouching: d.touching}
	}

	dt := now.Sub(d.prevTime).Seconds()
	if dt <= 0 {
		return Result{FingersTouching: d.touching}
	}

	m := Measure(cur, d.prev, dt)
	d.prev, d.prevTime = cur, now

	return Result{
		Evaluated:       true,
		FingersTouching: d.touching,
		Measurement:     m,
		Events:          d.Step(m, now),
	}
}

// Step advances the state machine with a precomputed measurement.
//
// A window opens when the condition first holds and confirms a clap on the
// first frame whose elapsed time lies strictly inside (MinHold, MaxHold).
// After a confirmed or expired window no new window opens until the
// condition breaks, so sustained contact counts once.
func (d *Detector) Step(m Measurement, now time.Time) []Event {
	if !m.Satisfies(d.config) {
		d.breakWindow()
		d.rearm = false
		return nil
	}

	if d.rearm {
		return nil
	}

	if d.state == Idle {
		d.state = Approaching
		d.closeTime = now
		d.logger.Debug("hands approaching",
			zap.Float64("distance", m.Distance),
			zap.Float64("alignment", m.PalmAlignment),
			zap.Float64("speed", m.ApproachSpeed))
		return nil
	}

	elapsed := now.Sub(d.closeTime)
	switch {
	case elapsed > d.config.MinHold && elapsed < d.config.MaxHold:
		d.state = Idle
		d.rearm = true
		windowOutcomes.WithLabelValues("confirmed").Inc()
		return d.confirm(now)
	case elapsed >= d.config.MaxHold:
		d.state = Idle
		d.rearm = true
		windowOutcomes.WithLabelValues("expired").Inc()
		d.logger.Debug("clap window expired", zap.Duration("elapsed", elapsed))
	}
	return nil
}

func (d *Detector) breakWindow() {
	if d.state == Approaching {
		windowOutcomes.WithLabelValues("broken").Inc()
	}
	d.state = Idle
	d.closeTime = time.Time{}
}

func (d *Detector) confirm(now time.Time) []Event {
	d.count++
	d.clappedUntil = now.Add(d.config.FlagHold)
	events := []Event{{Kind: Clap, Count: d.count, Time: now}}

	if d.hasFirstClap && now.Sub(d.firstClap) <= d.config.DoubleClapWindow {
		d.hasFirstClap = false
		d.doubleClappedUntil = now.Add(d.config.FlagHold)
		events = append(events, Event{Kind: DoubleClap, Count: d.count, Time: now})
		d.logger.Debug("double clap", zap.Int("count", d.count))
	} else {
		d.firstClap = now
		d.hasFirstClap = true
		d.logger.Debug("clap", zap.Int("count", d.count))
	}

	return events
}

// State returns the current phase.
func (d *Detector) State() State {
	return d.state
}

// ClapCount returns the number of claps confirmed since creation or Reset.
func (d *Detector) ClapCount() int {
	return d.count
}

// FingersTouching reports whether the index tips touched on the last usable frame.
func (d *Detector) FingersTouching() bool {
	return d.touching
}

// Clapped reports whether a clap was confirmed within FlagHold before now.
func (d *Detector) Clapped(now time.Time) bool {
	return now.Before(d.clappedUntil)
}

// DoubleClapped reports whether a double clap was confirmed within FlagHold before now.
func (d *Detector) DoubleClapped(now time.Time) bool {
	return now.Before(d.doubleClappedUntil)
}

// NextExpiry returns the earliest time after now at which a raised flag clears.
func (d *Detector) NextExpiry(now time.Time) (time.Time, bool) {
	var next time.Time
	for _, t := range []time.Time{d.clappedUntil, d.doubleClappedUntil} {
		if !t.After(now) {
			continue
		}
		if next.IsZero() || t.Before(next) {
			next = t
		}
	}
	return next, !next.IsZero()
}

// Reset clears all state including the clap count.
func (d *Detector) Reset() {
	*d = Detector{config: d.config, sampler: d.sampler, logger: d.logger}
}
