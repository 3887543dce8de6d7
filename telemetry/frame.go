// Package telemetry carries simulation output to its consumers: flush frames,
// field statistics, event counters and CSV/YAML experiment output.
package telemetry

import "log/slog"

// Frame is one flush of the simulation output. Height and Pheromone are
// row-major copies, indexed [y][x], owned by the receiver.
type Frame struct {
	Step      int
	Height    [][]float64
	Pheromone [][]float64
	MinHeight float64

	BitesLeft int
	Carrying  int
	Counters  Counters // run totals
	Window    Counters // events since the previous flush
	Final     bool
}

// Sink receives flushed frames.
type Sink interface {
	Flush(Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Frame) error

// Flush calls fn(f).
func (fn SinkFunc) Flush(f Frame) error { return fn(f) }

// Discard drops every frame.
var Discard Sink = SinkFunc(func(Frame) error { return nil })

// MultiSink flushes to each sink in order and stops at the first error.
type MultiSink []Sink

// Flush implements Sink.
func (m MultiSink) Flush(f Frame) error {
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Flush(f); err != nil {
			return err
		}
	}
	return nil
}

// LogSink logs the field statistics of every frame.
type LogSink struct {
	Logger *slog.Logger
}

// Flush implements Sink.
func (l LogSink) Flush(f Frame) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("flush",
		"stats", ComputeFieldStats(f),
		"window_bites", f.Window.Bites,
		"window_deliveries", f.Window.Deliveries,
		"window_moves", f.Window.Moves,
	)
	return nil
}
