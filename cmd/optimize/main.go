// Package main searches colony parameters with CMA-ES for the settings that
// carve the most relief into the terrain.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/landscaper/config"
)

type options struct {
	configPath string
	maxSteps   int
	seeds      int
	maxEvals   int
	population int
	outputDir  string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&o.maxSteps, "max-steps", 2000, "Simulation steps per run")
	flag.IntVar(&o.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&o.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&o.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.StringVar(&o.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(o); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.outputDir == "" {
		return errors.New("-output is required")
	}
	if o.seeds < 1 {
		return fmt.Errorf("-seeds must be positive, got %d", o.seeds)
	}
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if _, err := baseCfg.Settings(); err != nil {
		return fmt.Errorf("base config: %w", err)
	}

	// Simulation logs are noise here; keep only warnings.
	simLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	params := NewParamVector()
	evalSeeds := make([]int64, o.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, o.maxSteps, evalSeeds, baseCfg, simLogger)

	logFile, err := os.Create(filepath.Join(o.outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating optimize log: %w", err)
	}
	defer logFile.Close()

	prog, err := newProgress(logFile, params, o.maxEvals)
	if err != nil {
		return err
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			prog.record(params.Clamp(raw), fitness, evaluator.LastQuality())
			return fitness
		},
	}

	popSize := o.population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	// Seeds already run in parallel inside each evaluation.
	settings := &optimize.Settings{FuncEvaluations: o.maxEvals}

	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", o.maxEvals,
		"seeds", o.seeds,
		"steps", o.maxSteps,
	)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	if _, err := optimize.Minimize(problem, initX, settings, method); err != nil {
		// Hitting the evaluation budget ends the search with an error too.
		slog.Info("optimization ended", "reason", err)
	}
	if err := prog.err(); err != nil {
		return err
	}

	if prog.bestX == nil {
		return errors.New("no evaluation completed")
	}

	best := evaluator.BestStats()
	slog.Info("optimization complete",
		"evals", prog.evals,
		"elapsed", formatDuration(time.Since(prog.start)),
		"best_fitness", prog.best,
		"std_height", best.StdHeight,
		"min_height", best.MinHeight,
		"bites", best.Bites,
		"deliveries", best.Deliveries,
	)
	for i, spec := range params.Specs {
		fmt.Printf("  %-18s %.6f\n", spec.Name, prog.bestX[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, prog.bestX)
	out := filepath.Join(o.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		return err
	}
	slog.Info("best config saved", "path", out)
	return nil
}

// progress logs every evaluation to CSV and keeps the best parameters seen.
// The optimizer calls it sequentially.
type progress struct {
	w        *csv.Writer
	maxEvals int
	start    time.Time

	evals int
	best  float64
	bestX []float64
}

func newProgress(f *os.File, params *ParamVector, maxEvals int) (*progress, error) {
	p := &progress{
		w:        csv.NewWriter(f),
		maxEvals: maxEvals,
		start:    time.Now(),
		best:     1e9,
	}
	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := p.w.Write(header); err != nil {
		return nil, fmt.Errorf("writing optimize log header: %w", err)
	}
	return p, nil
}

func (p *progress) record(x []float64, fitness, quality float64) {
	p.evals++
	if fitness < p.best {
		p.best = fitness
		p.bestX = append(p.bestX[:0], x...)
	}

	row := []string{
		strconv.Itoa(p.evals),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(quality, 'f', 4, 64),
	}
	for _, v := range x {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	_ = p.w.Write(row)
	p.w.Flush()

	elapsed := time.Since(p.start)
	eta := time.Duration(p.maxEvals-p.evals) * (elapsed / time.Duration(p.evals))
	fmt.Printf("eval %d/%d: fitness=%.4f eaten=%.0f%% best=%.4f | elapsed %s, eta %s\n",
		p.evals, p.maxEvals, fitness, quality*100, p.best,
		formatDuration(elapsed), formatDuration(eta))
}

// err reports the first write error of the CSV log.
func (p *progress) err() error {
	p.w.Flush()
	if err := p.w.Error(); err != nil {
		return fmt.Errorf("writing optimize log: %w", err)
	}
	return nil
}

// formatDuration formats a duration as 1h02m03s, or 2m03s when under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
