// Command hivesim runs the honeybee colony simulation.
//
// Usage:
//
//	hivesim config_file=experiment.yaml [name=value ...]
//
// Command-line properties override those in configuration files.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/hivesim/internal/api"
	"github.com/talgya/hivesim/internal/config"
	"github.com/talgya/hivesim/internal/engine"
	"github.com/talgya/hivesim/internal/persistence"
	"github.com/talgya/hivesim/internal/stats"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	setupLogging(slog.LevelInfo)

	props, err := config.Load(args)
	if err != nil {
		slog.Error("configuration error", "error", err)
		return 1
	}
	cfg, err := config.Build(props)
	if err != nil {
		slog.Error("configuration error", "error", err)
		return 1
	}
	setupLogging(cfg.LogLevel)
	for _, k := range props.Keys() {
		slog.Debug("property", "name", k, "value", props[k])
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("failed to create data directory", "path", dir, "error", err)
			return 1
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return 1
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Grid ──────────────────────────────────────────────────────────
	collector := stats.NewCollector()
	sim, err := engine.NewSimulation(cfg, collector)
	if err != nil {
		slog.Error("failed to initialize simulation", "error", err)
		return 1
	}

	if err := db.CreateRun(sim.RunID, cfg); err != nil {
		slog.Error("failed to record run", "error", err)
		return 1
	}
	if err := db.SaveSiteRecords(sim.RunID, persistence.PhaseStart, sim.StartRecords()); err != nil {
		slog.Error("failed to save start records", "error", err)
		return 1
	}

	// ── Observer API ──────────────────────────────────────────────────
	var apiServer *api.Server
	if cfg.ServePort > 0 {
		apiServer = &api.Server{Sim: sim, Stats: collector, Port: cfg.ServePort}
		apiServer.Start()
	}

	// ── Run ───────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	fmt.Printf("\nhivesim run %s: %d×%d grid, %d years, seed %d\n",
		sim.RunID, cfg.EdgeLength, cfg.EdgeLength, cfg.SimLength, cfg.Seed)
	if apiServer != nil {
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.ServePort)
	}

	runErr := sim.Run(ctx)
	status := persistence.StatusFinished
	switch {
	case errors.Is(runErr, context.Canceled):
		status = persistence.StatusInterrupted
	case runErr != nil:
		status = persistence.StatusFailed
	}

	slog.Info("final save...")
	if err := db.SaveRunState(sim.RunID, sim.Year(), sim.Records(), collector.History(), status); err != nil {
		slog.Error("final save failed", "error", err)
		return 1
	}
	fmt.Printf("Run %s %s after %d years. Results saved to %s.\n", sim.RunID, status, sim.Year(), cfg.DBPath)

	if apiServer != nil {
		if ctx.Err() == nil {
			fmt.Println("Serving results... (Ctrl+C to stop)")
			<-ctx.Done()
		}
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown", "error", err)
		}
	}

	if status == persistence.StatusFailed {
		return 1
	}
	return 0
}

func setupLogging(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
