package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/tracking"
)

var (
	serveAddr   string
	serveRecord string
	serveWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept hand frames over WebSocket and serve the API",
	Long: `Starts the HTTP server. Headsets stream hand updates to /api/frames;
frames and events are broadcast on /api/stream.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveRecord, "record", "", "Append received updates to this JSONL file")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Reload the config file when it changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The recording file outlives the pipeline so the last updates are written.
	var recording *os.File
	if serveRecord != "" {
		recording, err = os.OpenFile(serveRecord, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open recording: %w", err)
		}
		defer recording.Close()
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.close(logger)

	socket := tracking.NewSocketProvider(cfg.Tracking.SocketBuffer, logger)
	var provider tracking.Provider = socket
	source := "socket"
	if recording != nil {
		provider = tracking.NewRecordingProvider(socket, tracking.NewRecorder(recording), logger)
		source = "socket+record:" + filepath.Base(serveRecord)
	}

	if _, err := p.app.BeginSession(source); err != nil {
		return err
	}
	if err := p.app.Start(ctx, provider); err != nil {
		return err
	}

	if serveWatch {
		w, err := config.NewWatcher(configPath, func(c *config.Config) { p.reload(c, logger) }, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
			w.Stop()
		} else {
			defer w.Stop()
		}
	}

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		logger.Info("serving static files", zap.String("dir", staticDir))
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     p.store,
		App:       p.app,
		Frames:    socket,
		Plugins:   p.plugins,
		Logger:    logger,
	})

	logger.Info("starting mudra", zap.String("addr", cfg.Server.Addr), zap.String("db", p.store.Path()))
	return srv.Serve(ctx, cfg.Server.Addr)
}

// findWebDir searches for a web directory in "web", "../web" and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeWebDir := filepath.Join(config.DefaultDir(), "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
