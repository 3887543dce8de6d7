package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// ConfigWriter is anything that can save itself as YAML.
type ConfigWriter interface {
	WriteYAML(path string) error
}

// CellRecord is one row of a field dump.
type CellRecord struct {
	X         int     `csv:"x"`
	Y         int     `csv:"y"`
	Height    float64 `csv:"height"`
	Pheromone float64 `csv:"pheromone"`
}

// OutputManager writes flushed frames to an experiment directory:
// steps.csv gets one FieldStats row per flush, and with DumpFields every
// flush also writes field_<step>.csv. It implements Sink.
type OutputManager struct {
	dir        string
	dumpFields bool

	stepsFile          *os.File
	stepsHeaderWritten bool
}

// NewOutputManager creates the output directory and opens steps.csv.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, dumpFields bool) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "steps.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating steps.csv: %w", err)
	}

	return &OutputManager{dir: dir, dumpFields: dumpFields, stepsFile: f}, nil
}

// WriteConfig saves the run configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg ConfigWriter) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// Flush implements Sink.
func (om *OutputManager) Flush(f Frame) error {
	if om == nil {
		return nil
	}
	if err := om.WriteStats(ComputeFieldStats(f)); err != nil {
		return err
	}
	if om.dumpFields {
		return om.WriteField(f)
	}
	return nil
}

// WriteStats appends a stats record to steps.csv.
func (om *OutputManager) WriteStats(stats FieldStats) error {
	if om == nil {
		return nil
	}

	records := []FieldStats{stats}

	if !om.stepsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.stepsFile); err != nil {
			return fmt.Errorf("writing steps: %w", err)
		}
		om.stepsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.stepsFile); err != nil {
			return fmt.Errorf("writing steps: %w", err)
		}
	}

	return nil
}

// WriteField dumps every cell of f to field_<step>.csv.
func (om *OutputManager) WriteField(f Frame) error {
	if om == nil {
		return nil
	}

	records := make([]CellRecord, 0, len(f.Height)*len(f.Height))
	for y, row := range f.Height {
		for x, h := range row {
			rec := CellRecord{X: x, Y: y, Height: h}
			if y < len(f.Pheromone) && x < len(f.Pheromone[y]) {
				rec.Pheromone = f.Pheromone[y][x]
			}
			records = append(records, rec)
		}
	}

	path := filepath.Join(om.dir, fmt.Sprintf("field_%06d.csv", f.Step))
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := gocsv.Marshal(records, out); err != nil {
		out.Close()
		return fmt.Errorf("writing field dump: %w", err)
	}
	return out.Close()
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes steps.csv.
func (om *OutputManager) Close() error {
	if om == nil || om.stepsFile == nil {
		return nil
	}
	return om.stepsFile.Close()
}
