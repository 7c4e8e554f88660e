// Package app runs the gesture pipeline: it consumes hand updates, classifies
// both hands, detects claps and snaps, and publishes frames and events.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/clap"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tracking"
)

// ErrRunning is returned by Start when a provider is already attached.
var ErrRunning = errors.New("app already running")

// Config holds the collaborators and initial settings of an App.
// Store and Plugins are optional.
type Config struct {
	Store   *store.Store
	Plugins *plugin.Dispatcher
	Logger  *zap.Logger

	Gesture    gesture.Config
	Clap       clap.Config
	SnapWindow time.Duration

	// Clock stamps updates that arrive without a time. Defaults to time.Now.
	Clock func() time.Time
	// SubscriberBuffer is the channel size handed to each subscriber.
	SubscriberBuffer int
}

// Settings are the tunables that can change while the pipeline runs.
type Settings struct {
	Gesture    gesture.Config
	Clap       clap.Config
	SnapWindow time.Duration
}

// App owns the hand snapshots and the detectors of one processing session.
type App struct {
	config Config
	logger *zap.Logger
	now    func() time.Time

	// procMu guards everything touched by a pipeline step.
	procMu     sync.Mutex
	classifier *gesture.Classifier
	snaps      *gesture.SnapTracker
	snapWindow time.Duration
	claps      *clap.Detector
	left       *hand.Snapshot
	right      *hand.Snapshot
	frame      Frame
	flagTime   time.Time

	mu       sync.RWMutex
	latest   Frame
	session  string
	running  bool
	cancel   context.CancelFunc
	provider tracking.Provider
	control  chan func()
	doneCh   chan struct{}

	frames *hub[Frame]
	events *hub[Event]
}

// New creates an App. Zero settings are replaced by their defaults.
func New(config Config) *App {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.Gesture == (gesture.Config{}) {
		config.Gesture = gesture.DefaultConfig()
	}
	if config.Clap == (clap.Config{}) {
		config.Clap = clap.DefaultConfig()
	}
	if config.SnapWindow <= 0 {
		config.SnapWindow = gesture.DefaultSnapWindow
	}
	if config.SubscriberBuffer <= 0 {
		config.SubscriberBuffer = 16
	}

	logger := config.Logger.Named("app")
	done := make(chan struct{})
	close(done)

	return &App{
		config:     config,
		logger:     logger,
		now:        config.Clock,
		classifier: gesture.NewClassifier(config.Gesture, logger),
		snaps:      gesture.NewSnapTracker(config.SnapWindow),
		snapWindow: config.SnapWindow,
		claps:      clap.NewDetector(config.Clap, logger),
		left:       hand.Untracked(hand.Left),
		right:      hand.Untracked(hand.Right),
		control:    make(chan func()),
		doneCh:     done,
		frames:     newHub[Frame](config.SubscriberBuffer),
		events:     newHub[Event](config.SubscriberBuffer),
	}
}

// Start attaches provider and runs the pipeline loop in a goroutine until ctx
// is cancelled, Stop is called, or the provider closes its channel.
// A provider that fails to start is reported here.
func (a *App) Start(ctx context.Context, provider tracking.Provider) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return ErrRunning
	}

	updates, err := provider.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start provider: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	a.running = true
	a.cancel = cancel
	a.provider = provider
	a.doneCh = make(chan struct{})

	go a.run(loopCtx, updates, a.doneCh)

	a.logger.Info("pipeline started")
	return nil
}

// Stop cancels the loop, closes the provider and waits for running hooks.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, provider, done := a.cancel, a.provider, a.doneCh
	a.cancel, a.provider = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		if err := provider.Close(); err != nil {
			a.logger.Warn("failed to close provider", zap.Error(err))
		}
		a.logger.Info("pipeline stopped")
	}

	if a.config.Plugins != nil {
		a.config.Plugins.Wait()
	}
}

// Done is closed when the loop exits. It is already closed before Start.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.doneCh
}

// Close stops the pipeline and closes every subscription.
func (a *App) Close() {
	a.Stop()
	a.frames.close()
	a.events.close()
}

// Subscribe returns a channel of frames and a func that cancels it.
// Frames are dropped for subscribers that fall behind.
func (a *App) Subscribe() (<-chan Frame, func()) {
	return a.frames.subscribe()
}

// SubscribeEvents returns a channel of events and a func that cancels it.
func (a *App) SubscribeEvents() (<-chan Event, func()) {
	return a.events.subscribe()
}

// Latest returns the most recently published frame.
func (a *App) Latest() Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// Settings returns the current tunables.
func (a *App) Settings() Settings {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	return Settings{
		Gesture:    a.classifier.Config(),
		Clap:       a.claps.Config(),
		SnapWindow: a.snapWindow,
	}
}

// UpdateConfig applies new settings. While the loop runs the change is made
// on the loop between two updates; UpdateConfig returns once it is applied.
func (a *App) UpdateConfig(s Settings) error {
	if err := s.Gesture.Validate(); err != nil {
		return fmt.Errorf("invalid classifier settings: %w", err)
	}
	if err := s.Clap.Validate(); err != nil {
		return fmt.Errorf("invalid clap settings: %w", err)
	}
	if s.SnapWindow <= 0 {
		s.SnapWindow = gesture.DefaultSnapWindow
	}

	apply := func() {
		a.procMu.Lock()
		defer a.procMu.Unlock()

		a.classifier.SetConfig(s.Gesture)
		a.claps.SetConfig(s.Clap)
		if s.SnapWindow != a.snapWindow {
			a.snaps = gesture.NewSnapTracker(s.SnapWindow)
			a.snapWindow = s.SnapWindow
		}
	}

	a.mu.RLock()
	running, done := a.running, a.doneCh
	a.mu.RUnlock()

	if running {
		applied := make(chan struct{})
		select {
		case a.control <- func() { apply(); close(applied) }:
			<-applied
			a.logger.Info("settings updated")
			return nil
		case <-done:
		}
	}

	apply()
	a.logger.Info("settings updated")
	return nil
}

// BeginSession opens a session that subsequent events are attributed to.
// An open session is ended first. Clap and snap state start over.
func (a *App) BeginSession(source string) (string, error) {
	if err := a.EndSession(); err != nil {
		a.logger.Warn("failed to end previous session", zap.Error(err))
	}

	id := uuid.NewString()
	if a.config.Store != nil {
		sess := &store.Session{ID: id, Source: source, StartedAt: a.now()}
		if err := a.config.Store.Sessions().Create(sess); err != nil {
			return "", fmt.Errorf("failed to create session: %w", err)
		}
	}

	a.procMu.Lock()
	a.claps.Reset()
	a.snaps.Reset()
	a.procMu.Unlock()

	a.mu.Lock()
	a.session = id
	a.mu.Unlock()

	a.logger.Info("session started", zap.String("session", id), zap.String("source", source))
	return id, nil
}

// EndSession closes the open session, if any.
func (a *App) EndSession() error {
	a.mu.Lock()
	id := a.session
	a.session = ""
	a.mu.Unlock()

	if id == "" {
		return nil
	}

	a.logger.Info("session ended", zap.String("session", id))
	if a.config.Store == nil {
		return nil
	}
	if err := a.config.Store.Sessions().End(id, a.now()); err != nil {
		return fmt.Errorf("failed to end session %s: %w", id, err)
	}
	return nil
}

// Session returns the open session ID or "".
func (a *App) Session() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}
