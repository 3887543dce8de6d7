package game

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/landscaper/telemetry"
)

var (
	// ErrAlreadyRunning is returned by Start while a run is active.
	ErrAlreadyRunning = errors.New("run already active")
	// ErrNotRunning is returned by Tick and Stop without an active run.
	ErrNotRunning = errors.New("no active run")
)

// Runner drives runs in stepped mode: the host calls Tick once per frame and
// gets control back after every tick. At most one run is active at a time.
type Runner struct {
	sink         telemetry.Sink
	stepsPerTick int
	opts         []Option

	sim *Simulation // nil when idle
}

// NewRunner creates an idle runner that flushes to sink. Each tick advances
// stepsPerTick steps (at least one). opts are applied to every simulation
// the runner starts.
func NewRunner(sink telemetry.Sink, stepsPerTick int, opts ...Option) *Runner {
	if sink == nil {
		sink = telemetry.Discard
	}
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	return &Runner{sink: sink, stepsPerTick: stepsPerTick, opts: opts}
}

// Running reports whether a run is active.
func (r *Runner) Running() bool { return r.sim != nil }

// Simulation returns the active run, or nil when idle.
func (r *Runner) Simulation() *Simulation { return r.sim }

// Start begins a fresh run with settings.
func (r *Runner) Start(settings Settings) error {
	if r.sim != nil {
		return ErrAlreadyRunning
	}
	sim, err := NewSimulation(settings, r.opts...)
	if err != nil {
		return err
	}
	r.sim = sim
	sim.logger.Info("run started", "seed", sim.Seed(), "max_steps", settings.Run.MaxSteps)
	return nil
}

// Tick advances the active run. It returns true when the run finished on
// this tick, in which case the final frame has been flushed and the runner
// is idle again.
func (r *Runner) Tick() (bool, error) {
	sim := r.sim
	if sim == nil {
		return false, ErrNotRunning
	}

	for i := 0; i < r.stepsPerTick; i++ {
		if sim.Step() {
			return true, r.finish(false)
		}
		if sim.periodicFlushDue() {
			if err := sim.flush(r.sink, false); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

// Stop interrupts the active run between steps and flushes its final frame.
func (r *Runner) Stop() error {
	if r.sim == nil {
		return ErrNotRunning
	}
	return r.finish(true)
}

func (r *Runner) finish(canceled bool) error {
	sim := r.sim
	r.sim = nil
	if canceled {
		sim.logger.Info("run stopped", "step", sim.StepCount())
	} else {
		sim.logger.Info("run finished", "step", sim.StepCount())
	}
	if err := sim.flush(r.sink, true); err != nil {
		return fmt.Errorf("final flush: %w", err)
	}
	return nil
}
