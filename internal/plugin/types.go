// Package plugin discovers external event hooks and runs them when gestures fire.
package plugin

import (
	"encoding/json"
	"slices"
	"time"
)

// Manifest describes a plugin's metadata and the events it subscribes to.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Events       []string        `json:"events"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Subscribes reports whether the plugin wants events of the given kind.
// The kind "*" subscribes to every event.
func (m Manifest) Subscribes(kind string) bool {
	return slices.Contains(m.Events, kind) || slices.Contains(m.Events, "*")
}

// Request is the JSON document a plugin receives on stdin.
type Request struct {
	Event     string          `json:"event"`
	Side      string          `json:"side,omitempty"`
	ClapCount int             `json:"clapCount"`
	Time      time.Time       `json:"time"`
	Session   string          `json:"session,omitempty"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Response is the JSON document a plugin writes to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
