package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// pipeline is the set of collaborators shared by serve and replay.
type pipeline struct {
	cfg     *config.Config
	store   *store.Store
	plugins *plugin.Manager
	app     *app.App
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

func settingsFrom(cfg *config.Config) app.Settings {
	return app.Settings{
		Gesture:    cfg.GestureConfig(),
		Clap:       cfg.ClapConfig(),
		SnapWindow: cfg.GetSnapWindow(),
	}
}

// newPipeline opens the store, discovers plugins and builds the app with the
// configured settings overlaid by the persisted toggles.
func newPipeline(cfg *config.Config, log *zap.Logger) (*pipeline, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	mgr := plugin.NewManager(cfg.Plugins.Dir, log)
	if err := mgr.Discover(); err != nil {
		log.Warn("plugin discovery failed", zap.Error(err))
	}
	dispatcher := plugin.NewDispatcher(mgr, plugin.NewExecutor(cfg.GetPluginTimeout()), log)

	settings, err := api.ApplyStored(st, settingsFrom(cfg))
	if err != nil {
		log.Warn("ignoring stored settings", zap.Error(err))
		settings = settingsFrom(cfg)
	}

	a := app.New(app.Config{
		Store:      st,
		Plugins:    dispatcher,
		Logger:     log,
		Gesture:    settings.Gesture,
		Clap:       settings.Clap,
		SnapWindow: settings.SnapWindow,
	})

	return &pipeline{cfg: cfg, store: st, plugins: mgr, app: a}, nil
}

// reload applies a changed config file to the running app.
func (p *pipeline) reload(cfg *config.Config, log *zap.Logger) {
	settings, err := api.ApplyStored(p.store, settingsFrom(cfg))
	if err != nil {
		log.Warn("ignoring stored settings", zap.Error(err))
		settings = settingsFrom(cfg)
	}
	if err := p.app.UpdateConfig(settings); err != nil {
		log.Warn("config reload rejected", zap.Error(err))
	}
}

func (p *pipeline) close(log *zap.Logger) {
	p.app.Close()
	if err := p.app.EndSession(); err != nil {
		log.Warn("failed to end session", zap.Error(err))
	}
	if err := p.store.Close(); err != nil {
		log.Warn("failed to close store", zap.Error(err))
	}
}
