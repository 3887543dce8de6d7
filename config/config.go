// Package config provides configuration loading for the colony simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/landscaper/components"
	"github.com/pthm-cable/landscaper/game"
	"github.com/pthm-cable/landscaper/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = game.ErrInvalidSettings

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Food      FoodConfig      `yaml:"food"`
	Colony    ColonyConfig    `yaml:"colony"`
	Run       RunConfig       `yaml:"run"`
	Weights   WeightsConfig   `yaml:"weights"`
	Slope     SlopeConfig     `yaml:"slope"`
	Pheromone PheromoneConfig `yaml:"pheromone"`
	Dig       DigConfig       `yaml:"dig"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WorldConfig holds grid parameters.
type WorldConfig struct {
	Dim              int     `yaml:"dim"`
	Bordered         bool    `yaml:"bordered"` // 1-cell inactive border
	Flat             bool    `yaml:"flat"`     // skip noise terrain
	BaseHeight       float64 `yaml:"base_height"`
	InitialPheromone float64 `yaml:"initial_pheromone"`
}

// TerrainConfig holds the noise terrain parameters.
type TerrainConfig struct {
	Amplitude  float64 `yaml:"amplitude"`
	Scale      float64 `yaml:"scale"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"`
	Gain       float64 `yaml:"gain"`
}

// FoodConfig holds food placement parameters.
type FoodConfig struct {
	Count    int `yaml:"count"`
	MaxBites int `yaml:"max_bites"`
}

// ColonyConfig holds ant parameters.
type ColonyConfig struct {
	Ants            int     `yaml:"ants"`
	IndividualStart bool    `yaml:"individual_start"`
	Shuffle         bool    `yaml:"shuffle"`
	InPlace         bool    `yaml:"in_place"` // ants may choose their own cell
	SenseRadius     int     `yaml:"sense_radius"`
	Home            *[2]int `yaml:"home,omitempty"` // [x, y]; random when absent
}

// RunConfig holds loop parameters.
type RunConfig struct {
	MaxSteps   int    `yaml:"max_steps"`
	Seed       *int64 `yaml:"seed,omitempty"` // time-based when absent
	FlushEvery int    `yaml:"flush_every"`    // 0 = final flush only
}

// SetSeed fixes the seed. Any value, including 0, replays the same run.
func (r *RunConfig) SetSeed(seed int64) { r.Seed = &seed }

// WeightsConfig holds the selection weights.
type WeightsConfig struct {
	Pheromone float64 `yaml:"pheromone"`
	Slope     float64 `yaml:"slope"`
	Direction float64 `yaml:"direction"`
	Random    float64 `yaml:"random"`
}

// SlopeConfig selects the slope portion formula.
type SlopeConfig struct {
	Mode string `yaml:"mode"` // minmax | absolute
}

// PheromoneConfig holds pheromone parameters.
type PheromoneConfig struct {
	Deposit            float64 `yaml:"deposit"`
	MinDepositFraction float64 `yaml:"min_deposit_fraction"`
	Max                float64 `yaml:"max"`
	Evaporation        float64 `yaml:"evaporation"`
	Diffusion          float64 `yaml:"diffusion"`
}

// DigConfig holds the height removed per move.
type DigConfig struct {
	Food   float64 `yaml:"food"`
	NoFood float64 `yaml:"no_food"`
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	LogStats   bool `yaml:"log_stats"`
	DumpFields bool `yaml:"dump_fields"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return cfg, nil
}

// Settings validates the configuration and converts it into run settings.
func (c *Config) Settings() (game.Settings, error) {
	mode, err := systems.ParseSlopeMode(c.Slope.Mode)
	if err != nil {
		return game.Settings{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var home *components.Cell
	if c.Colony.Home != nil {
		home = &components.Cell{X: c.Colony.Home[0], Y: c.Colony.Home[1]}
	}

	s := game.Settings{
		Field: systems.FieldSettings{
			Dim:              c.World.Dim,
			Bordered:         c.World.Bordered,
			Flat:             c.World.Flat,
			BaseHeight:       c.World.BaseHeight,
			InitialPheromone: c.World.InitialPheromone,
			MaxPheromone:     c.Pheromone.Max,
			Terrain: systems.TerrainSettings{
				Amplitude:  c.Terrain.Amplitude,
				Scale:      c.Terrain.Scale,
				Octaves:    c.Terrain.Octaves,
				Lacunarity: c.Terrain.Lacunarity,
				Gain:       c.Terrain.Gain,
			},
			FoodCount: c.Food.Count,
			MaxBites:  c.Food.MaxBites,
		},
		Policy: systems.PolicySettings{
			Weights: systems.Weights{
				Pheromone: c.Weights.Pheromone,
				Slope:     c.Weights.Slope,
				Direction: c.Weights.Direction,
				Random:    c.Weights.Random,
			},
			SlopeMode: mode,
			AllowStay: c.Colony.InPlace,
		},
		Dig: systems.DigSettings{
			Food:   c.Dig.Food,
			NoFood: c.Dig.NoFood,
		},
		Pheromone: systems.PheromoneSettings{
			Deposit:            c.Pheromone.Deposit,
			MinDepositFraction: c.Pheromone.MinDepositFraction,
			Evaporation:        c.Pheromone.Evaporation,
			Diffusion:          c.Pheromone.Diffusion,
		},
		Colony: game.ColonySettings{
			Ants:            c.Colony.Ants,
			Shuffle:         c.Colony.Shuffle,
			IndividualStart: c.Colony.IndividualStart,
			SenseRadius:     c.Colony.SenseRadius,
			Home:            home,
		},
		Run: game.RunSettings{
			MaxSteps:   c.Run.MaxSteps,
			TimeSeed:   c.Run.Seed == nil,
			FlushEvery: c.Run.FlushEvery,
		},
	}
	if c.Run.Seed != nil {
		s.Run.Seed = *c.Run.Seed
	}

	if err := s.Validate(); err != nil {
		return game.Settings{}, err
	}
	return s, nil
}

// Clone returns a deep copy, so sweeps can vary parameters per run.
func (c *Config) Clone() *Config {
	cp := *c
	if c.Colony.Home != nil {
		h := *c.Colony.Home
		cp.Colony.Home = &h
	}
	if c.Run.Seed != nil {
		cp.Run.SetSeed(*c.Run.Seed)
	}
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
