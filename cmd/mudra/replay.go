package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/tracking"
)

var (
	replayPace  bool
	replaySpeed float64
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Run a JSONL hand recording through the pipeline",
	Long: `Feeds a recording through the classifier and clap detector, stores the
events in a new session and prints a summary as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayPace, "pace", false, "Replay in real time using the recorded timestamps")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 0, "Playback speed for --pace (default from config)")
}

type replaySummary struct {
	Session   string         `json:"session"`
	ClapCount int            `json:"clapCount"`
	Events    map[string]int `json:"events"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.close(logger)

	speed := replaySpeed
	if speed <= 0 {
		speed = cfg.Tracking.ReplaySpeed
	}
	provider := tracking.NewReplayProvider(tracking.ReplayConfig{
		Path:  args[0],
		Pace:  replayPace,
		Speed: speed,
	}, logger)

	session, err := p.app.BeginSession("replay:" + filepath.Base(args[0]))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := p.app.Start(ctx, provider); err != nil {
		return err
	}
	select {
	case <-p.app.Done():
	case <-ctx.Done():
	}
	p.app.Stop()

	counts, err := p.store.Events().CountByKind(session)
	if err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}

	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")
	return out.Encode(replaySummary{
		Session:   session,
		ClapCount: p.app.Latest().ClapCount,
		Events:    counts,
	})
}
