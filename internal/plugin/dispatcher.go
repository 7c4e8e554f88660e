package plugin

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var runs = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mudra_plugin_runs_total",
	Help: "Plugin runs by event kind and outcome.",
}, []string{"event", "outcome"})

// Dispatcher runs every plugin subscribed to an event in its own goroutine.
// Failures are logged and never reach the caller.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over the given manager and executor.
func NewDispatcher(manager *Manager, executor *Executor, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		logger:   logger.Named("dispatch"),
	}
}

// Dispatch starts the subscribed plugins for req.Event and returns how many were started.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) int {
	plugins := d.manager.ForEvent(req.Event)
	for _, p := range plugins {
		d.wg.Add(1)
		go func(p *Plugin) {
			defer d.wg.Done()
			d.run(ctx, p, req)
		}(p)
	}
	return len(plugins)
}

func (d *Dispatcher) run(ctx context.Context, p *Plugin, req Request) {
	logger := d.logger.With(zap.String("plugin", p.Manifest.Name), zap.String("event", req.Event))

	resp, err := d.executor.Execute(ctx, p, &req)
	switch {
	case err != nil:
		runs.WithLabelValues(req.Event, "error").Inc()
		logger.Warn("plugin failed", zap.Error(err))
	case !resp.Success:
		runs.WithLabelValues(req.Event, "rejected").Inc()
		logger.Warn("plugin reported failure", zap.String("error", resp.Error))
	default:
		runs.WithLabelValues(req.Event, "ok").Inc()
		logger.Debug("plugin ran")
	}
}

// Wait blocks until every dispatched run has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
