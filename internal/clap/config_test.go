package clap

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero distance", func(c *Config) { c.MaxDistance = 0 }},
		{"inverted hold", func(c *Config) { c.MinHold, c.MaxHold = c.MaxHold, c.MinHold }},
		{"empty hold", func(c *Config) { c.MaxHold = c.MinHold }},
		{"zero double clap window", func(c *Config) { c.DoubleClapWindow = 0 }},
		{"negative flag hold", func(c *Config) { c.FlagHold = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParseMissingDataPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MissingDataPolicy
		wantErr bool
	}{
		{"", ResetOnMissing, false},
		{"reset", ResetOnMissing, false},
		{"skip", SkipOnMissing, false},
		{"ignore", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseMissingDataPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMissingDataPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMissingDataPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMeasure_DegenerateDirectionNeverSatisfies(t *testing.T) {
	s := Sample{
		LeftWrist:  r3.Vec{X: -0.03},
		LeftPalm:   r3.Vec{X: -0.03},
		RightWrist: r3.Vec{X: 0.03},
		RightPalm:  r3.Vec{X: 0.01},
	}
	prev := s
	prev.LeftWrist.X += 0.01
	prev.RightWrist.X -= 0.01

	m := Measure(s, prev, 0.01)
	if !math.IsNaN(m.PalmAlignment) {
		t.Fatalf("PalmAlignment = %v, want NaN for a zero-length palm direction", m.PalmAlignment)
	}
	if m.Satisfies(DefaultConfig()) {
		t.Error("NaN alignment satisfied the closing condition")
	}
}
