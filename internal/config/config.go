// Package config loads the mudra configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/clap"
	"github.com/ayusman/mudra/internal/gesture"
)

// Config is the root of the YAML configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Plugins    PluginsConfig    `yaml:"plugins"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Clap       ClapConfig       `yaml:"clap"`
	Tracking   TrackingConfig   `yaml:"tracking"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir,omitempty"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type PluginsConfig struct {
	Dir     string `yaml:"dir"`
	Timeout string `yaml:"timeout"`
}

// ClassifierConfig holds the per-frame pose thresholds.
type ClassifierConfig struct {
	StraightRatio       float64 `yaml:"straight_ratio"`
	ThumbExtensionRatio float64 `yaml:"thumb_extension_ratio"`
	TipTouchDistance    float64 `yaml:"tip_touch_distance"`
	RequireTipTouch     bool    `yaml:"require_tip_touch"`
	SnapWindow          string  `yaml:"snap_window"`
}

// ClapConfig mirrors clap.Config with durations written as strings ("50ms").
type ClapConfig struct {
	MaxDistance      float64 `yaml:"max_distance"`
	MinPalmAlignment float64 `yaml:"min_palm_alignment"`
	MinApproachSpeed float64 `yaml:"min_approach_speed"`
	MinHold          string  `yaml:"min_hold"`
	MaxHold          string  `yaml:"max_hold"`
	DoubleClapWindow string  `yaml:"double_clap_window"`
	FlagHold         string  `yaml:"flag_hold"`
	TouchDistance    float64 `yaml:"touch_distance"`
	MissingData      string  `yaml:"missing_data"`
}

type TrackingConfig struct {
	SocketBuffer int     `yaml:"socket_buffer"`
	ReplaySpeed  float64 `yaml:"replay_speed"`
}

// DefaultDir returns ~/.mudra, or .mudra when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

// DefaultPath returns the default location of the configuration file.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	g := gesture.DefaultConfig()
	c := clap.DefaultConfig()
	dir := DefaultDir()

	return &Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:8421",
		},
		Store: StoreConfig{
			Path: filepath.Join(dir, "mudra.db"),
		},
		Plugins: PluginsConfig{
			Dir:     filepath.Join(dir, "plugins"),
			Timeout: "5s",
		},
		Classifier: ClassifierConfig{
			StraightRatio:       g.StraightRatio,
			ThumbExtensionRatio: g.ThumbExtensionRatio,
			TipTouchDistance:    g.TipTouchDistance,
			RequireTipTouch:     g.RequireTipTouch,
			SnapWindow:          "500ms",
		},
		Clap: ClapConfig{
			MaxDistance:      c.MaxDistance,
			MinPalmAlignment: c.MinPalmAlignment,
			MinApproachSpeed: c.MinApproachSpeed,
			MinHold:          c.MinHold.String(),
			MaxHold:          c.MaxHold.String(),
			DoubleClapWindow: c.DoubleClapWindow.String(),
			FlagHold:         c.FlagHold.String(),
			TouchDistance:    c.TouchDistance,
			MissingData:      c.MissingData.String(),
		},
		Tracking: TrackingConfig{
			SocketBuffer: 64,
			ReplaySpeed:  1,
		},
	}
}

// Load reads the configuration at path on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MUDRA_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MUDRA_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("MUDRA_PLUGIN_DIR"); v != "" {
		c.Plugins.Dir = v
	}
	if v := os.Getenv("MUDRA_REQUIRE_TIP_TOUCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Classifier.RequireTipTouch = b
		}
	}
}

func durationOr(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

// GetPluginTimeout returns the hook timeout.
func (c *Config) GetPluginTimeout() time.Duration {
	return durationOr(c.Plugins.Timeout, 5*time.Second)
}

// GetSnapWindow returns the longest ready-to-done gap of a snap.
func (c *Config) GetSnapWindow() time.Duration {
	return durationOr(c.Classifier.SnapWindow, 500*time.Millisecond)
}

// GestureConfig converts the classifier section.
func (c *Config) GestureConfig() gesture.Config {
	return gesture.Config{
		StraightRatio:       c.Classifier.StraightRatio,
		ThumbExtensionRatio: c.Classifier.ThumbExtensionRatio,
		TipTouchDistance:    c.Classifier.TipTouchDistance,
		RequireTipTouch:     c.Classifier.RequireTipTouch,
	}
}

// ClapConfig converts the clap section. Unparseable durations and policies
// fall back to the defaults; Validate reports them.
func (c *Config) ClapConfig() clap.Config {
	def := clap.DefaultConfig()
	policy, err := clap.ParseMissingDataPolicy(c.Clap.MissingData)
	if err != nil {
		policy = def.MissingData
	}

	return clap.Config{
		MaxDistance:      c.Clap.MaxDistance,
		MinPalmAlignment: c.Clap.MinPalmAlignment,
		MinApproachSpeed: c.Clap.MinApproachSpeed,
		MinHold:          durationOr(c.Clap.MinHold, def.MinHold),
		MaxHold:          durationOr(c.Clap.MaxHold, def.MaxHold),
		DoubleClapWindow: durationOr(c.Clap.DoubleClapWindow, def.DoubleClapWindow),
		FlagHold:         durationOr(c.Clap.FlagHold, def.FlagHold),
		TouchDistance:    c.Clap.TouchDistance,
		MissingData:      policy,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}

	durations := map[string]string{
		"plugins.timeout":         c.Plugins.Timeout,
		"classifier.snap_window":  c.Classifier.SnapWindow,
		"clap.min_hold":           c.Clap.MinHold,
		"clap.max_hold":           c.Clap.MaxHold,
		"clap.double_clap_window": c.Clap.DoubleClapWindow,
		"clap.flag_hold":          c.Clap.FlagHold,
	}
	for field, v := range durations {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: invalid duration %q", field, v)
		}
	}

	if err := c.GestureConfig().Validate(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}

	if _, err := clap.ParseMissingDataPolicy(c.Clap.MissingData); err != nil {
		return fmt.Errorf("clap.missing_data: %w", err)
	}
	if err := c.ClapConfig().Validate(); err != nil {
		return fmt.Errorf("clap: %w", err)
	}

	if c.Tracking.SocketBuffer < 0 {
		return fmt.Errorf("tracking.socket_buffer must not be negative")
	}
	if c.Tracking.ReplaySpeed < 0 {
		return fmt.Errorf("tracking.replay_speed must not be negative")
	}

	return nil
}
