package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/landscaper/config"
)

func TestEmptyPlan(t *testing.T) {
	p := &Plan{}
	if p.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", p.Size())
	}

	base := config.Default()
	exps := p.Expand(base)
	if len(exps) != 1 {
		t.Fatalf("got %d experiments, want 1", len(exps))
	}
	if exps[0].Config == base {
		t.Error("experiment must not alias the base config")
	}
	if exps[0].Config.Colony.Ants != base.Colony.Ants {
		t.Error("empty plan changed the base config")
	}
}

func TestExpandOrder(t *testing.T) {
	p := &Plan{
		Seeds: []int64{1, 2},
		Ants:  []int{3, 4, 5},
		Flat:  []bool{true},
	}
	if p.Size() != 6 {
		t.Fatalf("Size() = %d, want 6", p.Size())
	}

	exps := p.Expand(config.Default())
	want := []struct {
		seed int64
		ants int
	}{
		{1, 3}, {1, 4}, {1, 5},
		{2, 3}, {2, 4}, {2, 5},
	}
	for i, w := range want {
		cfg := exps[i].Config
		if exps[i].Index != i {
			t.Errorf("experiment %d has index %d", i, exps[i].Index)
		}
		if cfg.Run.Seed == nil || *cfg.Run.Seed != w.seed || cfg.Colony.Ants != w.ants {
			t.Errorf("experiment %d: seed=%v ants=%d, want seed=%d ants=%d",
				i, cfg.Run.Seed, cfg.Colony.Ants, w.seed, w.ants)
		}
		if !cfg.World.Flat {
			t.Errorf("experiment %d is not flat", i)
		}
	}
}

func TestExpandTupleAxes(t *testing.T) {
	p := &Plan{
		Weights:  [][4]float64{{1, 0, 0, 0}, {0, 0, 1, 0.5}},
		Dig:      [][2]float64{{0.03, 0.005}},
		MaxSteps: 50,
		MaxBites: 2,
	}

	exps := p.Expand(config.Default())
	if len(exps) != 2 {
		t.Fatalf("got %d experiments, want 2", len(exps))
	}

	w := exps[1].Config.Weights
	if w.Pheromone != 0 || w.Direction != 1 || w.Random != 0.5 {
		t.Errorf("weights = %+v", w)
	}
	for _, e := range exps {
		c := e.Config
		if c.Dig.Food != 0.03 || c.Dig.NoFood != 0.005 {
			t.Errorf("dig = %+v", c.Dig)
		}
		if c.Run.MaxSteps != 50 || c.Food.MaxBites != 2 {
			t.Errorf("scalar overrides not applied: steps=%d bites=%d", c.Run.MaxSteps, c.Food.MaxBites)
		}
		// FlushEvery left at zero keeps the base value.
		if c.Run.FlushEvery != config.Default().Run.FlushEvery {
			t.Errorf("flush_every = %d", c.Run.FlushEvery)
		}
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	data := `
seeds: [7, 8]
slope_modes: [minmax, absolute]
weights:
  - [1, 1, 1, 1]
max_steps: 200
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if p.Size() != 4 || p.MaxSteps != 200 {
		t.Errorf("Size()=%d MaxSteps=%d", p.Size(), p.MaxSteps)
	}

	for _, e := range p.Expand(config.Default()) {
		if _, err := e.Config.Settings(); err != nil {
			t.Errorf("experiment %d invalid: %v", e.Index, err)
		}
	}
}
