package systems

import "fmt"

// Rand is the single random stream a run draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Int63() int64
}

// FieldSettings controls field generation.
type FieldSettings struct {
	Dim              int
	Bordered         bool // reserve a 1-cell inactive border
	Flat             bool
	BaseHeight       float64
	InitialPheromone float64
	MaxPheromone     float64
	Terrain          TerrainSettings

	FoodCount int
	MaxBites  int
}

// TerrainSettings holds the FBM parameters for noise terrain.
type TerrainSettings struct {
	Amplitude  float64 // height added at noise value 1
	Scale      float64 // base frequency across the whole grid
	Octaves    int
	Lacunarity float64
	Gain       float64
}

// Weights scale each portion of the selection policy.
type Weights struct {
	Pheromone float64
	Slope     float64
	Direction float64
	Random    float64
}

// SlopeMode selects how height differences become slope portions.
type SlopeMode uint8

const (
	// SlopeMinMax prefers lower neighbors, normalized by the neighborhood range.
	SlopeMinMax SlopeMode = iota
	// SlopeAbsolute prefers neighbors with the smallest absolute height change.
	SlopeAbsolute
)

// String returns the config name of the mode.
func (m SlopeMode) String() string {
	switch m {
	case SlopeMinMax:
		return "minmax"
	case SlopeAbsolute:
		return "absolute"
	default:
		return fmt.Sprintf("SlopeMode(%d)", uint8(m))
	}
}

// ParseSlopeMode converts a config name into a SlopeMode.
func ParseSlopeMode(s string) (SlopeMode, error) {
	switch s {
	case "", "minmax":
		return SlopeMinMax, nil
	case "absolute", "abs":
		return SlopeAbsolute, nil
	default:
		return 0, fmt.Errorf("unknown slope mode %q", s)
	}
}

// PolicySettings parameterizes next-cell selection.
type PolicySettings struct {
	Weights   Weights
	SlopeMode SlopeMode
	AllowStay bool // the current cell is a selectable neighbor
}

// DigSettings holds the height removed per move.
type DigSettings struct {
	Food   float64 // returning ants
	NoFood float64 // exploring ants
}

// PheromoneSettings holds deposit and field-update coefficients.
type PheromoneSettings struct {
	Deposit            float64
	MinDepositFraction float64
	Evaporation        float64
	Diffusion          float64
}
