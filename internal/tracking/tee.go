package tracking

import (
	"context"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/hand"
)

// RecordingProvider passes the updates of another provider through while
// appending each one to a Recorder. Stamped times are written as received.
type RecordingProvider struct {
	inner    Provider
	recorder *Recorder
	logger   *zap.Logger
}

// NewRecordingProvider wraps inner.
func NewRecordingProvider(inner Provider, recorder *Recorder, logger *zap.Logger) *RecordingProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordingProvider{inner: inner, recorder: recorder, logger: logger.Named("record")}
}

// Start starts the wrapped provider and forwards its channel.
func (p *RecordingProvider) Start(ctx context.Context) (<-chan hand.Update, error) {
	in, err := p.inner.Start(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan hand.Update)
	go func() {
		defer close(out)
		for u := range in {
			if err := p.recorder.Record(u); err != nil {
				p.logger.Warn("failed to record update", zap.Error(err))
			}
			if !send(ctx, out, u) {
				// Keep draining so the wrapped provider can finish.
				for range in {
				}
				return
			}
		}
	}()

	return out, nil
}

// Close closes the wrapped provider.
func (p *RecordingProvider) Close() error {
	return p.inner.Close()
}
