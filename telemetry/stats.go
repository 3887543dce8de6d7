package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FieldStats summarizes one frame.
type FieldStats struct {
	Step int `csv:"step"`

	MinHeight  float64 `csv:"min_height"`
	MaxHeight  float64 `csv:"max_height"`
	MeanHeight float64 `csv:"mean_height"`
	StdHeight  float64 `csv:"std_height"`
	HeightP10  float64 `csv:"height_p10"`
	HeightP50  float64 `csv:"height_p50"`
	HeightP90  float64 `csv:"height_p90"`

	PheromoneMass float64 `csv:"pheromone_mass"`
	PheromoneMax  float64 `csv:"pheromone_max"`
	TrailCells    int     `csv:"trail_cells"` // cells with any pheromone

	BitesLeft  int `csv:"bites_left"`
	Carrying   int `csv:"carrying"`
	Bites      int `csv:"bites"`
	Deliveries int `csv:"deliveries"`
	Moves      int `csv:"moves"`
	Stays      int `csv:"stays"`
}

// ComputeFieldStats calculates height and pheromone statistics for f.
// Quantiles are empirical. An empty frame yields zero statistics.
func ComputeFieldStats(f Frame) FieldStats {
	s := FieldStats{
		Step:       f.Step,
		BitesLeft:  f.BitesLeft,
		Carrying:   f.Carrying,
		Bites:      f.Counters.Bites,
		Deliveries: f.Counters.Deliveries,
		Moves:      f.Counters.Moves,
		Stays:      f.Counters.Stays,
	}

	heights := flatten(f.Height)
	if len(heights) > 0 {
		sort.Float64s(heights)
		s.MinHeight = heights[0]
		s.MaxHeight = heights[len(heights)-1]
		s.MeanHeight, s.StdHeight = stat.PopMeanStdDev(heights, nil)
		s.HeightP10 = stat.Quantile(0.10, stat.Empirical, heights, nil)
		s.HeightP50 = stat.Quantile(0.50, stat.Empirical, heights, nil)
		s.HeightP90 = stat.Quantile(0.90, stat.Empirical, heights, nil)
	}

	ph := flatten(f.Pheromone)
	if len(ph) > 0 {
		s.PheromoneMass = floats.Sum(ph)
		s.PheromoneMax = floats.Max(ph)
		for _, v := range ph {
			if v > 0 {
				s.TrailCells++
			}
		}
	}
	return s
}

func flatten(rows [][]float64) []float64 {
	n := 0
	for _, r := range rows {
		n += len(r)
	}
	out := make([]float64, 0, n)
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", s.Step),
		slog.Float64("min_height", s.MinHeight),
		slog.Float64("max_height", s.MaxHeight),
		slog.Float64("mean_height", s.MeanHeight),
		slog.Float64("std_height", s.StdHeight),
		slog.Float64("pheromone_mass", s.PheromoneMass),
		slog.Float64("pheromone_max", s.PheromoneMax),
		slog.Int("trail_cells", s.TrailCells),
		slog.Int("bites_left", s.BitesLeft),
		slog.Int("carrying", s.Carrying),
		slog.Int("bites", s.Bites),
		slog.Int("deliveries", s.Deliveries),
		slog.Int("moves", s.Moves),
		slog.Int("stays", s.Stays),
	)
}
