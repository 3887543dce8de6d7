// Command sweep runs every combination of a parameter plan in batch mode and
// writes one result row per experiment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/landscaper/config"
	"github.com/pthm-cable/landscaper/game"
	"github.com/pthm-cable/landscaper/telemetry"
)

// ResultRow is one line of results.csv.
type ResultRow struct {
	Experiment      int     `csv:"experiment"`
	Seed            int64   `csv:"seed"`
	Ants            int     `csv:"ants"`
	Shuffle         bool    `csv:"shuffle"`
	IndividualStart bool    `csv:"individual_start"`
	InPlace         bool    `csv:"in_place"`
	SlopeMode       string  `csv:"slope_mode"`
	PheromoneWeight float64 `csv:"w_pheromone"`
	SlopeWeight     float64 `csv:"w_slope"`
	DirectionWeight float64 `csv:"w_direction"`
	RandomWeight    float64 `csv:"w_random"`
	Evaporation     float64 `csv:"evaporation"`
	Diffusion       float64 `csv:"diffusion"`
	DigFood         float64 `csv:"dig_food"`
	DigNoFood       float64 `csv:"dig_no_food"`
	Flat            bool    `csv:"flat"`
	FoodCount       int     `csv:"food_count"`

	Steps         int     `csv:"steps"`
	Canceled      bool    `csv:"canceled"`
	MinHeight     float64 `csv:"min_height"`
	StdHeight     float64 `csv:"std_height"`
	PheromoneMass float64 `csv:"pheromone_mass"`
	Bites         int     `csv:"bites"`
	Deliveries    int     `csv:"deliveries"`
	AvgStepUS     int64   `csv:"avg_step_us"`
	Error         string  `csv:"error"`
}

// options controls where and how experiments run.
type options struct {
	outputDir  string
	dumpFields bool
	rerun      bool // ignore stored results
}

func newResultRow(exp Experiment) ResultRow {
	c := exp.Config
	row := ResultRow{
		Experiment:      exp.Index,
		Ants:            c.Colony.Ants,
		Shuffle:         c.Colony.Shuffle,
		IndividualStart: c.Colony.IndividualStart,
		InPlace:         c.Colony.InPlace,
		SlopeMode:       c.Slope.Mode,
		PheromoneWeight: c.Weights.Pheromone,
		SlopeWeight:     c.Weights.Slope,
		DirectionWeight: c.Weights.Direction,
		RandomWeight:    c.Weights.Random,
		Evaporation:     c.Pheromone.Evaporation,
		Diffusion:       c.Pheromone.Diffusion,
		DigFood:         c.Dig.Food,
		DigNoFood:       c.Dig.NoFood,
		Flat:            c.World.Flat,
		FoodCount:       c.Food.Count,
	}
	if c.Run.Seed != nil {
		row.Seed = *c.Run.Seed
	}
	return row
}

func main() {
	planPath := flag.String("plan", "", "Sweep plan YAML file")
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	outputDir := flag.String("output", "", "Output directory for results")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of worker goroutines")
	dumpFields := flag.Bool("dump-fields", false, "Write the full field on every flush")
	rerun := flag.Bool("rerun", false, "Run experiments again even if they already have a stored result")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *planPath == "" || *outputDir == "" {
		slog.Error("-plan and -output are required")
		os.Exit(2)
	}

	plan, err := LoadPlan(*planPath)
	if err != nil {
		slog.Error("failed to load plan", "error", err)
		os.Exit(1)
	}
	base, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	experiments := plan.Expand(base)
	slog.Info("starting sweep", "experiments", len(experiments), "workers", *workers)

	start := time.Now()
	opts := options{outputDir: *outputDir, dumpFields: *dumpFields, rerun: *rerun}
	rows := runAll(ctx, experiments, *workers, opts, logger)

	resultsPath := filepath.Join(*outputDir, "results.csv")
	f, err := os.Create(resultsPath)
	if err != nil {
		slog.Error("failed to create results", "error", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := gocsv.Marshal(rows, f); err != nil {
		slog.Error("failed to write results", "error", err)
		os.Exit(1)
	}

	slog.Info("sweep finished",
		"experiments", len(rows),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"results", resultsPath,
	)
}

// runAll fans experiments out to a fixed pool of workers. Rows come back in
// experiment order.
func runAll(ctx context.Context, experiments []Experiment, workers int, opts options, logger *slog.Logger) []ResultRow {
	if workers < 1 {
		workers = 1
	}

	rows := make([]ResultRow, len(experiments))
	jobs := make(chan Experiment)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for exp := range jobs {
				rows[exp.Index] = runExperiment(ctx, exp, opts, logger)
			}
		}()
	}

	for _, exp := range experiments {
		if ctx.Err() != nil {
			if row, ok := storedResult(exp, opts, logger); ok {
				rows[exp.Index] = row
				continue
			}
			rows[exp.Index] = newResultRow(exp)
			rows[exp.Index].Error = "skipped"
			continue
		}
		jobs <- exp
	}
	close(jobs)
	wg.Wait()
	return rows
}

// experimentDir is the directory holding one experiment's output.
func experimentDir(outputDir string, index int) string {
	return filepath.Join(outputDir, fmt.Sprintf("experiment_%04d", index))
}

// storedResult returns the result a previous sweep saved for exp. Only
// completed runs are saved, so an interrupted sweep resumes where it stopped.
func storedResult(exp Experiment, opts options, log *slog.Logger) (ResultRow, bool) {
	if opts.rerun {
		return ResultRow{}, false
	}
	row, err := loadResult(filepath.Join(experimentDir(opts.outputDir, exp.Index), resultFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("ignoring stored result", "experiment", exp.Index, "error", err)
		}
		return ResultRow{}, false
	}
	return row, true
}

const resultFile = "result.csv"

func loadResult(path string) (ResultRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return ResultRow{}, err
	}
	defer f.Close()

	var rows []ResultRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return ResultRow{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) != 1 {
		return ResultRow{}, fmt.Errorf("%s holds %d rows, want 1", path, len(rows))
	}
	return rows[0], nil
}

func saveResult(path string, row ResultRow) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal([]ResultRow{row}, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// runExperiment runs one experiment to completion or cancellation. Periodic
// and final frames go to the experiment's own directory. An experiment that
// already completed in an earlier sweep is not run again unless opts.rerun
// is set.
func runExperiment(ctx context.Context, exp Experiment, opts options, logger *slog.Logger) ResultRow {
	log := logger.With("experiment", exp.Index)
	if row, ok := storedResult(exp, opts, logger); ok {
		log.Info("experiment already done, skipping")
		return row
	}
	row := newResultRow(exp)

	settings, err := exp.Config.Settings()
	if err != nil {
		row.Error = err.Error()
		log.Warn("invalid experiment", "error", err)
		return row
	}

	sim, err := game.NewSimulation(settings, game.WithLogger(log))
	if err != nil {
		row.Error = err.Error()
		log.Warn("failed to create simulation", "error", err)
		return row
	}
	row.Seed = sim.Seed()

	dir := experimentDir(opts.outputDir, exp.Index)
	output, err := telemetry.NewOutputManager(dir, opts.dumpFields)
	if err != nil {
		row.Error = err.Error()
		return row
	}
	defer output.Close()

	cfg := exp.Config.Clone()
	cfg.Run.SetSeed(sim.Seed())
	if err := output.WriteConfig(cfg); err != nil {
		row.Error = err.Error()
		return row
	}

	var last telemetry.FieldStats
	sink := telemetry.MultiSink{output, telemetry.SinkFunc(func(f telemetry.Frame) error {
		if f.Final {
			last = telemetry.ComputeFieldStats(f)
		}
		return nil
	})}

	result, err := sim.RunContext(ctx, sink)
	if err != nil {
		row.Error = err.Error()
	}

	row.Steps = result.Steps
	row.Canceled = result.Canceled
	row.MinHeight = last.MinHeight
	row.StdHeight = last.StdHeight
	row.PheromoneMass = last.PheromoneMass
	row.Bites = result.Counters.Bites
	row.Deliveries = result.Counters.Deliveries
	row.AvgStepUS = result.Perf.AvgStepDuration.Microseconds()

	if err == nil && !result.Canceled {
		if err := saveResult(filepath.Join(dir, resultFile), row); err != nil {
			log.Warn("failed to store result", "error", err)
		}
	}

	log.Info("experiment finished", "steps", result.Steps, "std_height", last.StdHeight, "deliveries", last.Deliveries)
	return row
}
