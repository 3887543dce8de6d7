package main

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/landscaper/config"
	"github.com/pthm-cable/landscaper/game"
	"github.com/pthm-cable/landscaper/telemetry"
)

// FitnessEvaluator runs batch simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxSteps   int
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	mu          sync.Mutex
	bestFitness float64
	bestStats   telemetry.FieldStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxSteps int, seeds []int64, baseCfg *config.Config, logger *slog.Logger) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxSteps:    maxSteps,
		seeds:       seeds,
		baseConfig:  baseCfg,
		logger:      logger,
		bestFitness: math.Inf(1),
	}
}

// BestStats returns the final field statistics of the best seed run so far.
func (fe *FitnessEvaluator) BestStats() telemetry.FieldStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestStats
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	stats      telemetry.FieldStats
	totalBites int // bites available at the start
	err        error
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	stats   telemetry.FieldStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative terrain relief, so rougher landscapes score better.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			r := fe.runSimulation(x, s)
			if r.err != nil {
				fe.logger.Warn("evaluation run failed", "seed", s, "error", r.err)
				results[idx] = seedResult{fitness: 0}
				return
			}
			results[idx] = seedResult{
				fitness: computeFitness(r),
				quality: computeQuality(r),
				stats:   r.stats,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedStats telemetry.FieldStats

	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedStats = r.stats
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestStats = bestSeedStats
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single batch run and keeps its final statistics.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Run.SetSeed(seed)
	cfg.Run.MaxSteps = fe.maxSteps
	cfg.Run.FlushEvery = 0

	settings, err := cfg.Settings()
	if err != nil {
		return &runResult{err: err}
	}

	sim, err := game.NewSimulation(settings, game.WithLogger(fe.logger))
	if err != nil {
		return &runResult{err: err}
	}

	result := &runResult{totalBites: sim.Field().BitesLeft()}
	sink := telemetry.SinkFunc(func(f telemetry.Frame) error {
		result.stats = telemetry.ComputeFieldStats(f)
		return nil
	})
	if _, err := sim.Run(nil, sink); err != nil {
		return &runResult{err: fmt.Errorf("seed %d: %w", seed, err)}
	}
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(relief × (1.0 + 0.2 × quality))
// Relief is the height standard deviation; quality adds up to 20% bonus for
// colonies that actually forage.
func computeFitness(r *runResult) float64 {
	return -(r.stats.StdHeight * (1.0 + 0.2*computeQuality(r)))
}

// computeQuality is the fraction of the available food that was eaten.
func computeQuality(r *runResult) float64 {
	if r.totalBites == 0 {
		return 0
	}
	return clamp01(float64(r.stats.Bites) / float64(r.totalBites))
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
