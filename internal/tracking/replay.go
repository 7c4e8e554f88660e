package tracking

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/hand"
)

// ReplayConfig configures a ReplayProvider.
type ReplayConfig struct {
	Path string
	// Pace delays each update by the recorded gap to the previous one.
	Pace bool
	// Speed scales paced playback; 2 plays twice as fast. Zero means 1.
	Speed float64
}

// ReplayProvider plays a JSONL recording from disk.
type ReplayProvider struct {
	config ReplayConfig
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReplayProvider creates a ReplayProvider.
func NewReplayProvider(config ReplayConfig, logger *zap.Logger) *ReplayProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Speed <= 0 {
		config.Speed = 1
	}
	return &ReplayProvider{
		config: config,
		logger: logger.Named("replay"),
	}
}

// Start opens the recording. Open failures are returned wrapped in
// ErrStartFailed; malformed lines during playback are logged and skipped.
func (p *ReplayProvider) Start(ctx context.Context) (<-chan hand.Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done != nil {
		return nil, fmt.Errorf("%w: replay already started", ErrStartFailed)
	}

	f, err := os.Open(p.config.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartFailed, err)
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	out := make(chan hand.Update)

	go func(done chan struct{}) {
		defer close(done)
		defer close(out)
		defer f.Close()

		var last time.Time
		sent := 0
		err := scanRecording(f, func(line int, u hand.Update, err error) error {
			if err != nil {
				updatesReceived.WithLabelValues("replay", "malformed").Inc()
				p.logger.Warn("skipping malformed line", zap.Int("line", line), zap.Error(err))
				return nil
			}

			if p.config.Pace && !last.IsZero() && u.Time.After(last) {
				gap := time.Duration(float64(u.Time.Sub(last)) / p.config.Speed)
				select {
				case <-time.After(gap):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			if !u.Time.IsZero() {
				last = u.Time
			}

			if !send(ctx, out, u) {
				return ctx.Err()
			}
			updatesReceived.WithLabelValues("replay", "ok").Inc()
			sent++
			return nil
		})
		if err != nil && ctx.Err() == nil {
			p.logger.Error("replay stopped", zap.Error(err))
		}
		p.logger.Info("replay finished", zap.String("path", p.config.Path), zap.Int("updates", sent))
	}(p.done)

	return out, nil
}

// Close stops playback and waits for the reader to exit.
func (p *ReplayProvider) Close() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}
