// Package main provides a media control plugin for macOS.
// It maps gesture events to volume, brightness and media keys via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Request is the event document sent by the gesture host.
type Request struct {
	Event     string          `json:"event"`
	Side      string          `json:"side,omitempty"`
	ClapCount int             `json:"clapCount"`
	Time      time.Time       `json:"time"`
	Session   string          `json:"session,omitempty"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type actionHandler func() error

var actionHandlers = map[string]actionHandler{
	"volume-up":        volumeUp,
	"volume-down":      volumeDown,
	"volume-mute":      volumeMute,
	"brightness-up":    brightnessUp,
	"brightness-down":  brightnessDown,
	"media-play-pause": mediaPlayPause,
	"media-next":       mediaNext,
	"media-prev":       mediaPrev,
}

// defaultBindings maps event kinds to actions. Config may override any entry.
var defaultBindings = map[string]string{
	"clap":        "media-play-pause",
	"double_clap": "volume-mute",
	"snap":        "media-next",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	action, err := resolveAction(req)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	handler, ok := actionHandlers[action]
	if !ok {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", action))
		return
	}

	if err := handler(); err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", action, err))
		return
	}

	writeSuccessResponse()
}

// resolveAction picks the action bound to the request's event.
func resolveAction(req Request) (string, error) {
	bindings := make(map[string]string, len(defaultBindings))
	for k, v := range defaultBindings {
		bindings[k] = v
	}

	if len(req.Config) > 0 {
		var overrides map[string]string
		if err := json.Unmarshal(req.Config, &overrides); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
		for k, v := range overrides {
			bindings[k] = v
		}
	}

	action, ok := bindings[req.Event]
	if !ok {
		return "", fmt.Errorf("no action bound to event %q", req.Event)
	}
	return action, nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// volumeUp increases the system volume by 10%.
func volumeUp() error {
	script := `set volume output volume ((output volume of (get volume settings)) + 10)`
	return runAppleScript(script)
}

// volumeDown decreases the system volume by 10%.
func volumeDown() error {
	script := `set volume output volume ((output volume of (get volume settings)) - 10)`
	return runAppleScript(script)
}

// volumeMute toggles the system mute state.
func volumeMute() error {
	script := `set volume output muted (not (output muted of (get volume settings)))`
	return runAppleScript(script)
}

// brightnessUp increases the screen brightness.
func brightnessUp() error {
	script := `tell application "System Events"
	key code 144
end tell`
	return runAppleScript(script)
}

// brightnessDown decreases the screen brightness.
func brightnessDown() error {
	script := `tell application "System Events"
	key code 145
end tell`
	return runAppleScript(script)
}

// mediaPlayPause toggles media play/pause using the F8/Play-Pause media key.
func mediaPlayPause() error {
	script := `tell application "System Events"
	key code 100
end tell`
	return runAppleScript(script)
}

// mediaNext skips to the next track using the F9/Next media key.
func mediaNext() error {
	script := `tell application "System Events"
	key code 101
end tell`
	return runAppleScript(script)
}

// mediaPrev skips to the previous track using the F7/Previous media key.
func mediaPrev() error {
	script := `tell application "System Events"
	key code 98
end tell`
	return runAppleScript(script)
}
