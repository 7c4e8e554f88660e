// Package tracking supplies hand-tracking updates from mocks, recordings and live sockets.
package tracking

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ayusman/mudra/internal/hand"
)

var (
	// ErrStartFailed wraps any failure to start a provider.
	ErrStartFailed = errors.New("provider start failed")
	// ErrClosed is returned when starting a provider that was already closed.
	ErrClosed = errors.New("provider closed")
)

// Provider delivers hand updates on a channel. The channel is closed when
// the provider runs out of data, its context is cancelled, or Close is called.
type Provider interface {
	Start(ctx context.Context) (<-chan hand.Update, error)
	Close() error
}

var updatesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mudra_provider_updates_total",
	Help: "Hand updates seen by providers, by provider and outcome.",
}, []string{"provider", "outcome"})

// send delivers u unless ctx is done first.
func send(ctx context.Context, out chan<- hand.Update, u hand.Update) bool {
	select {
	case out <- u:
		return true
	case <-ctx.Done():
		return false
	}
}
