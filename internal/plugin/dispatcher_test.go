package plugin

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDispatcher_Dispatch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "received")

	// Each plugin appends its name and the request to the shared file.
	for _, p := range []struct {
		name   string
		events []string
	}{
		{"on-clap", []string{"clap"}},
		{"on-snap", []string{"snap"}},
		{"on-all", []string{"*"}},
	} {
		writeManifest(t, root, Manifest{Name: p.name, Executable: "run.sh", Events: p.events})
		script := "#!/bin/sh\nINPUT=$(cat)\necho \"" + p.name + " $INPUT\" >> " + out + "\necho '{\"success\":true}'\n"
		if err := os.WriteFile(filepath.Join(root, p.name, "run.sh"), []byte(script), 0755); err != nil {
			t.Fatalf("failed to write script: %v", err)
		}
	}

	mgr := NewManager(root, zap.NewNop())
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	d := NewDispatcher(mgr, NewExecutor(5*time.Second), zap.NewNop())
	started := d.Dispatch(context.Background(), Request{Event: "clap", ClapCount: 1, Time: time.Now()})
	d.Wait()

	if started != 2 {
		t.Errorf("Dispatch() started %d plugins, want 2", started)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	got := string(data)
	for _, want := range []string{"on-clap ", "on-all "} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %s", want, got)
		}
	}
	if strings.Contains(got, "on-snap") {
		t.Errorf("snap plugin ran for a clap: %s", got)
	}
	if !strings.Contains(got, `"event":"clap"`) {
		t.Errorf("plugins did not receive the event JSON: %s", got)
	}
}

func TestDispatcher_FailuresAreContained(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "broken", Executable: "missing-binary", Events: []string{"clap"}})

	mgr := NewManager(root, zap.NewNop())
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	d := NewDispatcher(mgr, NewExecutor(time.Second), nil)
	if n := d.Dispatch(context.Background(), Request{Event: "clap"}); n != 1 {
		t.Fatalf("Dispatch() started %d plugins, want 1", n)
	}
	d.Wait()
}
