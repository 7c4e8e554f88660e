// Package main provides a cross-platform plugin that appends every gesture
// event it receives to a JSON lines file.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type config struct {
	Path string `json:"path"`
}

// logPath returns the target file: the config path, then MUDRA_EVENT_LOG,
// then events.jsonl in the working directory.
func logPath(raw json.RawMessage) (string, error) {
	if len(raw) > 0 {
		var c config
		if err := json.Unmarshal(raw, &c); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
		if c.Path != "" {
			return c.Path, nil
		}
	}
	if p := os.Getenv("MUDRA_EVENT_LOG"); p != "" {
		return p, nil
	}
	return "events.jsonl", nil
}

func appendEvent(path string, event json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(event, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	var raw json.RawMessage
	if err := json.NewDecoder(os.Stdin).Decode(&raw); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	var req struct {
		Config json.RawMessage `json:"config"`
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	path, err := logPath(req.Config)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	if err := appendEvent(path, raw); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("append %s: %v", path, err)})
		return
	}

	data, _ := json.Marshal(map[string]string{"path": path})
	writeResponse(Response{Success: true, Data: data})
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
