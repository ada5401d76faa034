package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/softtrail/serpentines/config"
	"github.com/softtrail/serpentines/engine"
	"github.com/softtrail/serpentines/platform"
	"github.com/softtrail/serpentines/preset"
	"github.com/softtrail/serpentines/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	presetsDir := flag.String("presets", "", "Preset directory (empty = use config)")
	activePreset := flag.String("preset", "", "Preset to activate at startup (empty = use config)")
	headless := flag.Bool("headless", false, "Run without graphics against a virtual monitor")
	outputDir := flag.String("output-dir", "", "Output directory for CSV telemetry")
	seed := flag.Int64("seed", 0, "Jitter seed (0 = use config)")
	maxFrames := flag.Int64("max-frames", 0, "Stop after N frames (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *presetsDir != "" {
		cfg.Presets.Dir = *presetsDir
	}
	if *activePreset != "" {
		cfg.Presets.Active = *activePreset
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}
	if *seed != 0 {
		cfg.Engine.Seed = *seed
	}

	lib, err := preset.OpenLibrary(cfg.Presets.Dir)
	if err != nil {
		slog.Error("failed to open preset library", "dir", cfg.Presets.Dir, "error", err)
		os.Exit(1)
	}

	var out *telemetry.OutputManager
	if cfg.Telemetry.OutputDir != "" {
		out, err = telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
		if err != nil {
			slog.Error("failed to create output directory", "dir", cfg.Telemetry.OutputDir, "error", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	var plat platform.Platform
	if *headless {
		plat = platform.NewHeadless()
	} else {
		plat = platform.NewRaylib("serpentines")
	}
	defer plat.Close()

	eng, err := engine.New(engine.Options{
		Platform:  plat,
		Library:   lib,
		Config:    cfg,
		Output:    out,
		MaxFrames: *maxFrames,
	})
	if err != nil {
		slog.Error("failed to create engine", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("starting overlay",
		"headless", *headless,
		"preset", cfg.Presets.Active,
		"seed", cfg.Engine.Seed,
		"max_frames", *maxFrames,
	)

	if err := eng.Run(ctx); err != nil {
		slog.Error("engine stopped with error", "error", err)
		os.Exit(1)
	}
}
