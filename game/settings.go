// Package game runs the colony: it owns the field and the ant entities for the
// duration of a run and advances them one step at a time.
package game

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/landscaper/components"
	"github.com/pthm-cable/landscaper/systems"
)

// ErrInvalidSettings is wrapped by every settings validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the immutable configuration of one run.
type Settings struct {
	Field     systems.FieldSettings
	Policy    systems.PolicySettings
	Dig       systems.DigSettings
	Pheromone systems.PheromoneSettings
	Colony    ColonySettings
	Run       RunSettings
}

// ColonySettings controls the ants.
type ColonySettings struct {
	Ants            int
	Shuffle         bool // shuffle update order every step
	IndividualStart bool // each ant starts on its own random cell
	SenseRadius     int  // Chebyshev radius for food detection
	Home            *components.Cell
}

// RunSettings controls the loop.
type RunSettings struct {
	MaxSteps   int
	Seed       int64
	TimeSeed   bool // ignore Seed and seed from the clock
	FlushEvery int  // 0 = final flush only
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSettings, fmt.Sprintf(format, args...))
}

// Validate reports the first setting that would make a run meaningless.
func (s Settings) Validate() error {
	f := s.Field
	switch {
	case f.Dim < 1:
		return invalid("grid dimension %d must be positive", f.Dim)
	case f.Bordered && f.Dim < 3:
		return invalid("bordered grid dimension %d must be at least 3", f.Dim)
	case f.FoodCount < 0:
		return invalid("food count %d must not be negative", f.FoodCount)
	case f.MaxBites < 0:
		return invalid("max bites %d must not be negative", f.MaxBites)
	case f.MaxPheromone <= 0:
		return invalid("max pheromone %g must be positive", f.MaxPheromone)
	case !f.Flat && f.Terrain.Octaves < 1:
		return invalid("noise terrain needs at least one octave")
	}

	w := s.Policy.Weights
	if w.Pheromone < 0 || w.Slope < 0 || w.Direction < 0 || w.Random < 0 {
		return invalid("selection weights must not be negative")
	}
	if s.Policy.SlopeMode != systems.SlopeMinMax && s.Policy.SlopeMode != systems.SlopeAbsolute {
		return invalid("unknown slope mode %v", s.Policy.SlopeMode)
	}

	p := s.Pheromone
	switch {
	case p.Evaporation < 0 || p.Evaporation > 1:
		return invalid("evaporation %g must be in [0,1]", p.Evaporation)
	case p.Diffusion < 0 || p.Diffusion > 1:
		return invalid("diffusion %g must be in [0,1]", p.Diffusion)
	case p.Deposit < 0:
		return invalid("pheromone deposit %g must not be negative", p.Deposit)
	case p.MinDepositFraction < 0 || p.MinDepositFraction > 1:
		return invalid("min deposit fraction %g must be in [0,1]", p.MinDepositFraction)
	}

	c := s.Colony
	switch {
	case c.Ants < 1:
		return invalid("ant count %d must be positive", c.Ants)
	case c.SenseRadius < 1:
		return invalid("sense radius %d must be positive", c.SenseRadius)
	case s.Run.MaxSteps < 1:
		return invalid("step budget %d must be positive", s.Run.MaxSteps)
	case s.Run.FlushEvery < 0:
		return invalid("flush interval %d must not be negative", s.Run.FlushEvery)
	}

	if c.Home != nil {
		lo, hi := 0, f.Dim
		if f.Bordered {
			lo, hi = 1, f.Dim-1
		}
		h := *c.Home
		if h.X < lo || h.Y < lo || h.X >= hi || h.Y >= hi {
			return invalid("home %v outside playable area", h)
		}
	}
	return nil
}
