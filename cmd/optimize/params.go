// Package main provides CMA-ES optimization for colony parameters.
package main

import (
	"github.com/pthm-cable/landscaper/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Selection weights
			{Name: "pheromone_weight", Path: "weights.pheromone", Min: 0, Max: 1, Default: 1},
			{Name: "slope_weight", Path: "weights.slope", Min: 0, Max: 1, Default: 1},
			{Name: "direction_weight", Path: "weights.direction", Min: 0, Max: 1, Default: 1},
			{Name: "random_weight", Path: "weights.random", Min: 0, Max: 1, Default: 1},
			// Pheromone
			{Name: "deposit", Path: "pheromone.deposit", Min: 0.01, Max: 0.5, Default: 0.1},
			{Name: "evaporation", Path: "pheromone.evaporation", Min: 0, Max: 0.3, Default: 0.05},
			{Name: "diffusion", Path: "pheromone.diffusion", Min: 0, Max: 0.5, Default: 0.05},
			// Digging
			{Name: "dig_food", Path: "dig.food", Min: 0.001, Max: 0.05, Default: 0.02},
			{Name: "dig_no_food", Path: "dig.no_food", Min: 0.001, Max: 0.05, Default: 0.01},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)

	cfg.Weights.Pheromone = c[0]
	cfg.Weights.Slope = c[1]
	cfg.Weights.Direction = c[2]
	cfg.Weights.Random = c[3]

	cfg.Pheromone.Deposit = c[4]
	cfg.Pheromone.Evaporation = c[5]
	cfg.Pheromone.Diffusion = c[6]

	cfg.Dig.Food = c[7]
	cfg.Dig.NoFood = c[8]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Weights.Pheromone,
		cfg.Weights.Slope,
		cfg.Weights.Direction,
		cfg.Weights.Random,
		cfg.Pheromone.Deposit,
		cfg.Pheromone.Evaporation,
		cfg.Pheromone.Diffusion,
		cfg.Dig.Food,
		cfg.Dig.NoFood,
	}
}
