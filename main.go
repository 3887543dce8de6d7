package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pthm-cable/landscaper/config"
	"github.com/pthm-cable/landscaper/game"
	"github.com/pthm-cable/landscaper/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed, overrides config (time-based if neither sets one)")
	maxSteps := flag.Int("max-steps", 0, "Stop after N steps (0 = use config)")
	flushEvery := flag.Int("flush-every", -1, "Periodic flush interval in steps (-1 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output field stats via slog on every flush")
	dumpFields := flag.Bool("dump-fields", false, "Write the full field on every flush")
	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// CLI overrides
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.Run.SetSeed(*seed)
		}
	})
	if *maxSteps > 0 {
		cfg.Run.MaxSteps = *maxSteps
	}
	if *flushEvery >= 0 {
		cfg.Run.FlushEvery = *flushEvery
	}
	if *logStats {
		cfg.Telemetry.LogStats = true
	}
	if *dumpFields {
		cfg.Telemetry.DumpFields = true
	}

	settings, err := cfg.Settings()
	if err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir, cfg.Telemetry.DumpFields)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	sinks := telemetry.MultiSink{}
	if output != nil {
		sinks = append(sinks, output)
	}
	if cfg.Telemetry.LogStats {
		sinks = append(sinks, telemetry.LogSink{Logger: logger})
	}

	sim, err := game.NewSimulation(settings, game.WithLogger(logger))
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	// Record the resolved seed so the run can be replayed from config.yaml.
	cfg.Run.SetSeed(sim.Seed())
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	colony := sim.Colony()
	slog.Info("starting simulation",
		"seed", sim.Seed(),
		"dim", settings.Field.Dim,
		"ants", settings.Colony.Ants,
		"max_steps", settings.Run.MaxSteps,
		"colony_x", colony.X,
		"colony_y", colony.Y,
		"output_dir", output.Dir(),
	)

	result, err := sim.RunContext(ctx, sinks)
	if err != nil {
		slog.Error("run failed", "step", result.Steps, "error", err)
		os.Exit(1)
	}

	slog.Info("simulation finished",
		"steps", result.Steps,
		"canceled", result.Canceled,
		"bites", result.Counters.Bites,
		"deliveries", result.Counters.Deliveries,
		"min_height", sim.Field().MinHeight(),
		"perf", result.Perf,
	)
}
