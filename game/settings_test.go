package game

import (
	"errors"
	"testing"

	"github.com/pthm-cable/landscaper/components"
	"github.com/pthm-cable/landscaper/systems"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero dim", func(s *Settings) { s.Field.Dim = 0 }},
		{"tiny bordered", func(s *Settings) { s.Field.Bordered = true; s.Field.Dim = 2 }},
		{"negative food", func(s *Settings) { s.Field.FoodCount = -1 }},
		{"negative bites", func(s *Settings) { s.Field.MaxBites = -1 }},
		{"zero max pheromone", func(s *Settings) { s.Field.MaxPheromone = 0 }},
		{"no octaves", func(s *Settings) { s.Field.Terrain.Octaves = 0 }},
		{"negative weight", func(s *Settings) { s.Policy.Weights.Random = -0.1 }},
		{"bad slope mode", func(s *Settings) { s.Policy.SlopeMode = systems.SlopeMode(9) }},
		{"evaporation above 1", func(s *Settings) { s.Pheromone.Evaporation = 1.5 }},
		{"negative diffusion", func(s *Settings) { s.Pheromone.Diffusion = -0.1 }},
		{"negative deposit", func(s *Settings) { s.Pheromone.Deposit = -1 }},
		{"min fraction above 1", func(s *Settings) { s.Pheromone.MinDepositFraction = 2 }},
		{"no ants", func(s *Settings) { s.Colony.Ants = 0 }},
		{"zero sense radius", func(s *Settings) { s.Colony.SenseRadius = 0 }},
		{"zero steps", func(s *Settings) { s.Run.MaxSteps = 0 }},
		{"negative flush", func(s *Settings) { s.Run.FlushEvery = -1 }},
		{"home outside", func(s *Settings) { s.Colony.Home = &components.Cell{X: 24, Y: 0} }},
		{"home on border", func(s *Settings) {
			s.Field.Bordered = true
			s.Colony.Home = &components.Cell{X: 0, Y: 5}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			tt.mutate(&s)
			err := s.Validate()
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("Validate() = %v, want ErrInvalidSettings", err)
			}
			if _, err := NewSimulation(s, WithLogger(quiet)); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("NewSimulation() = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	s := testSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default test settings rejected: %v", err)
	}

	// Flat terrain does not need noise octaves.
	s.Field.Flat = true
	s.Field.Terrain = systems.TerrainSettings{}
	if err := s.Validate(); err != nil {
		t.Errorf("flat settings rejected: %v", err)
	}
}

func TestHomeOutsideSuppliedField(t *testing.T) {
	f, err := systems.NewFlatField(5, false, 1, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	s := scenarioSettings()
	s.Field.Dim = 10
	s.Colony.Home = &components.Cell{X: 7, Y: 7}

	if _, err := NewSimulation(s, WithField(f), WithLogger(quiet)); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("NewSimulation() = %v, want ErrInvalidSettings", err)
	}
}
