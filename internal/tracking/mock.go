package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/hand"
)

// MockProvider plays back a fixed slice of updates for tests and demos.
type MockProvider struct {
	updates  []hand.Update
	interval time.Duration
	startErr error

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMockProvider creates a MockProvider over updates.
func NewMockProvider(updates []hand.Update) *MockProvider {
	return &MockProvider{updates: updates}
}

// SetInterval sets a delay between consecutive updates.
func (p *MockProvider) SetInterval(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interval = d
}

// FailStart makes the next Start fail with err.
func (p *MockProvider) FailStart(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startErr = err
}

// Start begins playback. The channel closes after the last update.
func (p *MockProvider) Start(ctx context.Context) (<-chan hand.Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartFailed, p.startErr)
	}
	if p.done != nil {
		return nil, fmt.Errorf("%w: mock already started", ErrStartFailed)
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	out := make(chan hand.Update)

	go func(updates []hand.Update, interval time.Duration, done chan struct{}) {
		defer close(done)
		defer close(out)

		for i, u := range updates {
			if i > 0 && interval > 0 {
				select {
				case <-time.After(interval):
				case <-ctx.Done():
					return
				}
			}
			if !send(ctx, out, u) {
				return
			}
			updatesReceived.WithLabelValues("mock", "ok").Inc()
		}
	}(p.updates, p.interval, p.done)

	return out, nil
}

// Close stops playback and waits for it to finish.
func (p *MockProvider) Close() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}
