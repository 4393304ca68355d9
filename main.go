package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/travoltage/config"
	"github.com/pthm-cable/travoltage/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 3600, "Stop after N ticks (0 = unlimited)")
	maxCycles := flag.Int("max-cycles", 0, "Stop after N rub/discharge cycles (0 = unlimited)")
	debug := flag.Bool("debug", false, "Log discharge and reset events")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g := game.NewGameWithOptions(game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
	})
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"stats_window", *statsWindow,
		"max_ticks", *maxTicks,
		"max_cycles", *maxCycles,
	)

	scenario := game.NewScenario(g)
	for {
		scenario.Step()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick(), "cycles", scenario.Cycles())
			return
		}
		if *maxCycles > 0 && scenario.Cycles() >= *maxCycles {
			slog.Info("max cycles reached", "tick", g.Tick(), "cycles", scenario.Cycles())
			return
		}
	}
}
