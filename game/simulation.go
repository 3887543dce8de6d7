package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/landscaper/components"
	"github.com/pthm-cable/landscaper/systems"
	"github.com/pthm-cable/landscaper/telemetry"
)

// Simulation owns one run: the field, the ant entities and the random
// stream. Only the simulation writes to the field.
type Simulation struct {
	settings Settings
	seed     int64
	rng      systems.Rand
	logger   *slog.Logger

	field    *systems.Field
	diffuser *systems.Diffuser

	world       *ecs.World
	antMap      *ecs.Map3[components.Position, components.Colony, components.Cargo]
	cargoFilter *ecs.Filter1[components.Cargo]
	order       []ecs.Entity // update order; shuffled in place when enabled

	colony    components.Cell
	step      int
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
}

// perfWindow is the number of steps step timing is averaged over.
const perfWindow = 100

// Option customizes a Simulation.
type Option func(*Simulation)

// WithRand replaces the seeded random stream.
func WithRand(rng systems.Rand) Option {
	return func(s *Simulation) { s.rng = rng }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithField runs on a prepared field instead of generating one.
func WithField(f *systems.Field) Option {
	return func(s *Simulation) { s.field = f }
}

// NewSimulation validates settings, generates the field and spawns the ants.
func NewSimulation(settings Settings, opts ...Option) (*Simulation, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		settings:  settings,
		logger:    slog.Default(),
		diffuser:  systems.NewDiffuser(settings.Pheromone.Evaporation, settings.Pheromone.Diffusion),
		collector: telemetry.NewCollector(),
		perf:      telemetry.NewPerfCollector(perfWindow),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		s.seed = settings.Run.Seed
		if settings.Run.TimeSeed {
			s.seed = time.Now().UnixNano()
		}
		s.rng = rand.New(rand.NewSource(s.seed))
	}

	if s.field == nil {
		f, err := systems.NewField(settings.Field, s.rng)
		if err != nil {
			return nil, fmt.Errorf("generating field: %w", err)
		}
		s.field = f
	}

	if err := s.spawnColony(); err != nil {
		return nil, err
	}

	s.logger.Debug("simulation created",
		"seed", s.seed,
		"dim", s.field.Dim(),
		"ants", len(s.order),
		"foods", len(s.field.Foods()),
		"colony_x", s.colony.X,
		"colony_y", s.colony.Y,
	)
	return s, nil
}

// Field exposes the field for reading.
func (s *Simulation) Field() *systems.Field { return s.field }

// Settings returns the run settings.
func (s *Simulation) Settings() Settings { return s.settings }

// Seed returns the seed of the internal random stream. It is meaningless
// when the stream was supplied with WithRand.
func (s *Simulation) Seed() int64 { return s.seed }

// Colony returns the home cell shared by all ants.
func (s *Simulation) Colony() components.Cell { return s.colony }

// StepCount returns the number of completed steps.
func (s *Simulation) StepCount() int { return s.step }

// Done reports whether the step budget is spent.
func (s *Simulation) Done() bool { return s.step >= s.settings.Run.MaxSteps }

// Counters returns the event totals so far.
func (s *Simulation) Counters() telemetry.Counters { return s.collector.Total() }

// Perf returns step timing over the last steps.
func (s *Simulation) Perf() telemetry.PerfStats { return s.perf.Stats() }

// Step advances the run by one step: optional shuffle, every ant acts in
// order, then one diffusion pass. It returns true once the step budget is
// spent; further calls do nothing.
func (s *Simulation) Step() bool {
	if s.Done() {
		return true
	}

	s.perf.StartStep()
	if s.settings.Colony.Shuffle {
		s.perf.StartPhase(telemetry.PhaseShuffle)
		s.shuffleOrder()
	}
	s.perf.StartPhase(telemetry.PhaseAnts)
	for _, e := range s.order {
		pos, col, cargo := s.antMap.Get(e)
		s.updateAnt(pos, col, cargo)
	}

	s.perf.StartPhase(telemetry.PhaseDiffusion)
	s.diffuser.Step(s.field)
	s.perf.EndStep()

	s.step++
	return s.Done()
}

// shuffleOrder permutes the update order with a Fisher-Yates pass on the
// run's stream.
func (s *Simulation) shuffleOrder() {
	for i := len(s.order) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		s.order[i], s.order[j] = s.order[j], s.order[i]
	}
}

// Frame copies the current output state.
func (s *Simulation) Frame() telemetry.Frame {
	return telemetry.Frame{
		Step:      s.step,
		Height:    s.field.HeightRows(),
		Pheromone: s.field.PheromoneRows(),
		MinHeight: s.field.MinHeight(),
		BitesLeft: s.field.BitesLeft(),
		Carrying:  s.carrying(),
		Counters:  s.collector.Total(),
		Final:     s.Done(),
	}
}

// Ant is a read-only view of one ant.
type Ant struct {
	Cell     components.Cell
	Home     components.Cell
	Carrying bool
}

// Ants returns the ants in their current update order.
func (s *Simulation) Ants() []Ant {
	out := make([]Ant, len(s.order))
	for i, e := range s.order {
		pos, col, cargo := s.antMap.Get(e)
		out[i] = Ant{Cell: pos.Cell, Home: col.Home, Carrying: cargo.Carrying()}
	}
	return out
}

// carrying counts ants on their way home.
func (s *Simulation) carrying() int {
	n := 0
	query := s.cargoFilter.Query()
	for query.Next() {
		if query.Get().Carrying() {
			n++
		}
	}
	return n
}

// Result describes how a batch run ended.
type Result struct {
	Steps    int
	Canceled bool
	Counters telemetry.Counters
	Perf     telemetry.PerfStats
}

// Run executes steps back to back until the budget is spent or stop returns
// true. stop is polled after every step. The last frame is always flushed to
// sink, and every FlushEvery steps a periodic frame is flushed too.
func (s *Simulation) Run(stop func(step int) bool, sink telemetry.Sink) (Result, error) {
	if sink == nil {
		sink = telemetry.Discard
	}

	canceled := false
	for !s.Done() {
		s.Step()
		if !s.Done() && s.periodicFlushDue() {
			if err := s.flush(sink, false); err != nil {
				return s.result(canceled), err
			}
		}
		if stop != nil && !s.Done() && stop(s.step) {
			canceled = true
			break
		}
	}

	if canceled {
		s.logger.Info("run canceled", "step", s.step)
	}
	err := s.flush(sink, true)
	return s.result(canceled), err
}

// RunContext is Run with the context as the stop signal.
func (s *Simulation) RunContext(ctx context.Context, sink telemetry.Sink) (Result, error) {
	return s.Run(func(int) bool { return ctx.Err() != nil }, sink)
}

func (s *Simulation) periodicFlushDue() bool {
	every := s.settings.Run.FlushEvery
	return every > 0 && s.step%every == 0
}

func (s *Simulation) flush(sink telemetry.Sink, final bool) error {
	frame := s.Frame()
	frame.Final = final
	frame.Window = s.collector.Window()
	if err := sink.Flush(frame); err != nil {
		return fmt.Errorf("flushing step %d: %w", s.step, err)
	}
	return nil
}

func (s *Simulation) result(canceled bool) Result {
	return Result{
		Steps:    s.step,
		Canceled: canceled,
		Counters: s.collector.Total(),
		Perf:     s.perf.Stats(),
	}
}
