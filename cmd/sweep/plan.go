package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/landscaper/config"
)

// Plan lists the values each swept parameter takes. Every combination is one
// experiment. An empty list keeps the base config value.
type Plan struct {
	Seeds           []int64      `yaml:"seeds"`
	Ants            []int        `yaml:"ants"`
	Shuffle         []bool       `yaml:"shuffle"`
	IndividualStart []bool       `yaml:"individual_start"`
	InPlace         []bool       `yaml:"in_place"`
	SlopeModes      []string     `yaml:"slope_modes"`
	Weights         [][4]float64 `yaml:"weights"` // pheromone, slope, direction, random
	Evaporation     []float64    `yaml:"evaporation"`
	Diffusion       []float64    `yaml:"diffusion"`
	Dig             [][2]float64 `yaml:"dig"` // food, no_food
	Flat            []bool       `yaml:"flat"`
	FoodCount       []int        `yaml:"food_count"`

	// Fixed for the whole sweep; zero keeps the base config value.
	MaxSteps   int `yaml:"max_steps"`
	FlushEvery int `yaml:"flush_every"`
	MaxBites   int `yaml:"max_bites"`
}

// LoadPlan reads a sweep plan from YAML.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	p := &Plan{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	return p, nil
}

// Experiment is one combination of the plan applied to the base config.
type Experiment struct {
	Index  int
	Config *config.Config
}

// axis is one swept parameter: n values, and a setter for value i.
type axis struct {
	n     int
	apply func(cfg *config.Config, i int)
}

func (p *Plan) axes() []axis {
	var out []axis
	add := func(n int, apply func(cfg *config.Config, i int)) {
		if n > 0 {
			out = append(out, axis{n: n, apply: apply})
		}
	}

	add(len(p.Seeds), func(c *config.Config, i int) { c.Run.SetSeed(p.Seeds[i]) })
	add(len(p.Ants), func(c *config.Config, i int) { c.Colony.Ants = p.Ants[i] })
	add(len(p.Shuffle), func(c *config.Config, i int) { c.Colony.Shuffle = p.Shuffle[i] })
	add(len(p.IndividualStart), func(c *config.Config, i int) { c.Colony.IndividualStart = p.IndividualStart[i] })
	add(len(p.InPlace), func(c *config.Config, i int) { c.Colony.InPlace = p.InPlace[i] })
	add(len(p.SlopeModes), func(c *config.Config, i int) { c.Slope.Mode = p.SlopeModes[i] })
	add(len(p.Weights), func(c *config.Config, i int) {
		w := p.Weights[i]
		c.Weights = config.WeightsConfig{Pheromone: w[0], Slope: w[1], Direction: w[2], Random: w[3]}
	})
	add(len(p.Evaporation), func(c *config.Config, i int) { c.Pheromone.Evaporation = p.Evaporation[i] })
	add(len(p.Diffusion), func(c *config.Config, i int) { c.Pheromone.Diffusion = p.Diffusion[i] })
	add(len(p.Dig), func(c *config.Config, i int) {
		c.Dig = config.DigConfig{Food: p.Dig[i][0], NoFood: p.Dig[i][1]}
	})
	add(len(p.Flat), func(c *config.Config, i int) { c.World.Flat = p.Flat[i] })
	add(len(p.FoodCount), func(c *config.Config, i int) { c.Food.Count = p.FoodCount[i] })
	return out
}

// Size returns the number of experiments in the plan.
func (p *Plan) Size() int {
	n := 1
	for _, a := range p.axes() {
		n *= a.n
	}
	return n
}

// Expand returns the cartesian product of the plan over base. The first axis
// varies slowest, so experiments sharing a seed are contiguous.
func (p *Plan) Expand(base *config.Config) []Experiment {
	axes := p.axes()
	total := p.Size()

	out := make([]Experiment, 0, total)
	for idx := 0; idx < total; idx++ {
		cfg := base.Clone()
		if p.MaxSteps > 0 {
			cfg.Run.MaxSteps = p.MaxSteps
		}
		if p.FlushEvery > 0 {
			cfg.Run.FlushEvery = p.FlushEvery
		}
		if p.MaxBites > 0 {
			cfg.Food.MaxBites = p.MaxBites
		}

		rem := idx
		for k := len(axes) - 1; k >= 0; k-- {
			a := axes[k]
			a.apply(cfg, rem%a.n)
			rem /= a.n
		}
		out = append(out, Experiment{Index: idx, Config: cfg})
	}
	return out
}
