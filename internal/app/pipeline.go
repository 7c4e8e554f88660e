package app

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

var (
	framesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mudra_frames_processed_total",
		Help: "Hand updates processed, by side and tracking state.",
	}, []string{"side", "tracked"})

	eventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mudra_events_total",
		Help: "Gesture events emitted, by kind.",
	}, []string{"kind"})

	clapUnevaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mudra_clap_frames_unevaluated_total",
		Help: "Frames with both hands tracked that the clap detector could not evaluate.",
	})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mudra_subscriber_frames_dropped_total",
		Help: "Frames not delivered to a slow subscriber.",
	})

	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mudra_frame_duration_seconds",
		Help:    "Time spent processing one hand update.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})
)

// run is the single consumer of provider updates. Settings changes arrive on
// the control channel and are applied between updates.
func (a *App) run(ctx context.Context, updates <-chan hand.Update, done chan struct{}) {
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
		close(done)
	}()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	var expiry time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case fn := <-a.control:
			fn()

		case u, ok := <-updates:
			if !ok {
				a.logger.Info("provider finished")
				return
			}
			a.Process(u)
			expiry = a.armExpiry(timer)

		case <-timer.C:
			a.refresh(expiry)
			expiry = a.armExpiry(timer)
		}
	}
}

// Process runs one pipeline step for u and publishes the resulting frame and
// events. It is what the loop calls for every update.
func (a *App) Process(u hand.Update) Frame {
	start := time.Now()

	a.procMu.Lock()
	frame, events := a.step(u)
	a.procMu.Unlock()

	a.publish(frame, events)
	frameDuration.Observe(time.Since(start).Seconds())

	return frame
}

// step must be called with procMu held.
func (a *App) step(u hand.Update) (Frame, []Event) {
	if u.Time.IsZero() {
		u.Time = a.now()
	}

	snap := hand.NewSnapshot(u)
	switch u.Side {
	case hand.Left:
		a.left = snap
	case hand.Right:
		a.right = snap
	}

	tracked := "false"
	if u.Tracked {
		tracked = "true"
	}
	framesProcessed.WithLabelValues(u.Side.String(), tracked).Inc()

	left := a.classifier.ExtendedFingerCount(a.left)
	right := a.classifier.ExtendedFingerCount(a.right)
	ready := a.classifier.IsFingerSnapReady(a.right)
	done := a.classifier.IsFingerSnapDone(a.right)

	res := a.claps.Process(a.left, a.right, u.Time)
	if !res.Evaluated && a.left.IsTracked() && a.right.IsTracked() {
		clapUnevaluated.Inc()
	}

	var events []Event
	for _, e := range res.Events {
		events = append(events, Event{Kind: e.Kind.String(), ClapCount: e.Count, Time: e.Time})
	}
	if a.snaps.Observe(ready, done, u.Time) {
		events = append(events, Event{
			Kind:      EventSnap,
			Side:      hand.Right.String(),
			ClapCount: a.claps.ClapCount(),
			Time:      u.Time,
		})
	}

	a.frame = Frame{
		Left:            left,
		Right:           right,
		DisplayedNumber: gesture.DisplayedNumber(left, right),
		FingerSnapReady: ready,
		FingerSnapDone:  done,
		AllFingersBent:  a.classifier.IsAllFingersBent(a.left) && a.classifier.IsAllFingersBent(a.right),
		FingersTouching: res.FingersTouching,
		ClapCount:       a.claps.ClapCount(),
		Clapped:         a.claps.Clapped(u.Time),
		DoubleClapped:   a.claps.DoubleClapped(u.Time),
		Time:            u.Time,
	}
	a.flagTime = u.Time

	return a.frame, events
}

// armExpiry schedules the timer for the next flag to clear and returns its time.
func (a *App) armExpiry(timer *time.Timer) time.Time {
	a.procMu.Lock()
	at, ok := a.claps.NextExpiry(a.flagTime)
	from := a.flagTime
	a.procMu.Unlock()

	timer.Stop()
	if !ok {
		return time.Time{}
	}
	timer.Reset(at.Sub(from))
	return at
}

// refresh republishes the last frame with its flags evaluated at at.
func (a *App) refresh(at time.Time) {
	if at.IsZero() {
		return
	}

	a.procMu.Lock()
	a.flagTime = at
	a.frame.Clapped = a.claps.Clapped(at)
	a.frame.DoubleClapped = a.claps.DoubleClapped(at)
	a.frame.Time = at
	frame := a.frame
	a.procMu.Unlock()

	a.publish(frame, nil)
}

func (a *App) publish(frame Frame, events []Event) {
	a.mu.Lock()
	a.latest = frame
	session := a.session
	a.mu.Unlock()

	if n := a.frames.publish(frame); n > 0 {
		framesDropped.Add(float64(n))
	}

	for _, e := range events {
		e.Session = session
		a.emit(e)
	}
}

// emit records, dispatches and broadcasts one event. Failures are logged.
func (a *App) emit(e Event) {
	eventsEmitted.WithLabelValues(e.Kind).Inc()
	a.logger.Info("gesture event",
		zap.String("kind", e.Kind),
		zap.Int("clap_count", e.ClapCount),
		zap.Time("time", e.Time),
	)

	if a.config.Store != nil && e.Session != "" {
		rec := &store.Event{
			SessionID:  e.Session,
			Kind:       e.Kind,
			Side:       e.Side,
			ClapCount:  e.ClapCount,
			OccurredAt: e.Time,
		}
		if err := a.config.Store.Events().Create(rec); err != nil {
			a.logger.Error("failed to record event", zap.String("kind", e.Kind), zap.Error(err))
		}
	}

	if a.config.Plugins != nil {
		a.config.Plugins.Dispatch(context.Background(), plugin.Request{
			Event:     e.Kind,
			Side:      e.Side,
			ClapCount: e.ClapCount,
			Time:      e.Time,
			Session:   e.Session,
		})
	}

	a.events.publish(e)
}
