package systems

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/landscaper/components"
)

// Field owns the height and pheromone matrices and the food list.
// Both matrices are dim x dim, indexed [y, x].
type Field struct {
	dim          int
	bordered     bool
	maxPheromone float64

	height    *mat.Dense
	pheromone *mat.Dense

	foods     []*components.FoodSource
	minHeight float64
}

// NewFlatField allocates a field with every height set to baseHeight and
// every pheromone value set to initialPheromone. No food is placed.
func NewFlatField(dim int, bordered bool, baseHeight, initialPheromone, maxPheromone float64) (*Field, error) {
	if dim < 1 {
		return nil, errors.New("field dimension must be positive")
	}
	if bordered && dim < 3 {
		return nil, errors.New("bordered field needs a dimension of at least 3")
	}
	if maxPheromone <= 0 {
		return nil, errors.New("max pheromone must be positive")
	}

	f := &Field{
		dim:          dim,
		bordered:     bordered,
		maxPheromone: maxPheromone,
		height:       mat.NewDense(dim, dim, nil),
		pheromone:    mat.NewDense(dim, dim, nil),
		minHeight:    baseHeight,
	}

	ph := clamp(initialPheromone, 0, maxPheromone)
	hs := f.height.RawMatrix().Data
	ps := f.pheromone.RawMatrix().Data
	for i := range hs {
		hs[i] = baseHeight
		ps[i] = ph
	}
	return f, nil
}

// NewField generates a field from settings: flat or noise terrain, initial
// pheromone, and FoodCount sources at uniform random playable cells.
func NewField(s FieldSettings, rng Rand) (*Field, error) {
	f, err := NewFlatField(s.Dim, s.Bordered, s.BaseHeight, s.InitialPheromone, s.MaxPheromone)
	if err != nil {
		return nil, err
	}

	if !s.Flat {
		fillNoise(f, s.BaseHeight, s.Terrain, rng.Int63())
	}

	for i := 0; i < s.FoodCount; i++ {
		f.AddFood(f.RandomCell(rng), s.MaxBites)
	}
	return f, nil
}

// Dim returns the grid dimension N.
func (f *Field) Dim() int { return f.dim }

// Bordered reports whether the outer ring of cells is inactive.
func (f *Field) Bordered() bool { return f.bordered }

// MaxPheromone returns the pheromone ceiling.
func (f *Field) MaxPheromone() float64 { return f.maxPheromone }

// MinHeight returns the lowest height any cell has reached.
func (f *Field) MinHeight() float64 { return f.minHeight }

// Foods returns the food sources in placement order. Depleted sources stay listed.
func (f *Field) Foods() []*components.FoodSource { return f.foods }

// Heights exposes the height matrix for reading.
func (f *Field) Heights() mat.Matrix { return f.height }

// Pheromones exposes the pheromone matrix for reading.
func (f *Field) Pheromones() mat.Matrix { return f.pheromone }

// Height returns the height at c. c must be in bounds.
func (f *Field) Height(c components.Cell) float64 { return f.height.At(c.Y, c.X) }

// Pheromone returns the pheromone at c. c must be in bounds.
func (f *Field) Pheromone(c components.Cell) float64 { return f.pheromone.At(c.Y, c.X) }

// Contains reports whether c lies inside the matrices.
func (f *Field) Contains(c components.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < f.dim && c.Y < f.dim
}

// Playable reports whether ants may stand on c.
func (f *Field) Playable(c components.Cell) bool {
	lo, hi := f.bounds()
	return c.X >= lo && c.Y >= lo && c.X < hi && c.Y < hi
}

// bounds returns the half-open playable range [lo, hi) on both axes.
func (f *Field) bounds() (int, int) {
	if f.bordered {
		return 1, f.dim - 1
	}
	return 0, f.dim
}

// RandomCell draws a uniform playable cell.
func (f *Field) RandomCell(rng Rand) components.Cell {
	lo, hi := f.bounds()
	x := lo + rng.Intn(hi-lo)
	y := lo + rng.Intn(hi-lo)
	return components.Cell{X: x, Y: y}
}

// Neighbors returns the playable cells within Chebyshev distance radius of c
// in row-major order, optionally including c itself.
func (f *Field) Neighbors(c components.Cell, radius int, includeSelf bool) []components.Cell {
	out := make([]components.Cell, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 && !includeSelf {
				continue
			}
			n := components.Cell{X: c.X + dx, Y: c.Y + dy}
			if !f.Playable(n) {
				continue
			}
			out = append(out, n)
		}
	}
	return out
}

// AddFood places a food source at c and returns it.
func (f *Field) AddFood(c components.Cell, maxBites int) *components.FoodSource {
	food := components.NewFoodSource(c, maxBites)
	f.foods = append(f.foods, food)
	return food
}

// FoodNear returns the first source, in placement order, that lies on one of
// cells and still has bites. It returns nil otherwise.
func (f *Field) FoodNear(cells []components.Cell) *components.FoodSource {
	for _, food := range f.foods {
		if !food.HasBitesLeft() {
			continue
		}
		for _, c := range cells {
			if food.Cell == c {
				return food
			}
		}
	}
	return nil
}

// BitesLeft sums the remaining bites over all food sources.
func (f *Field) BitesLeft() int {
	total := 0
	for _, food := range f.foods {
		total += food.Bites()
	}
	return total
}

// AddHeight adds delta to the height at c and lowers MinHeight if needed.
// Out-of-bounds cells are ignored.
func (f *Field) AddHeight(c components.Cell, delta float64) {
	if !f.Contains(c) {
		return
	}
	h := f.height.At(c.Y, c.X) + delta
	f.height.Set(c.Y, c.X, h)
	if h < f.minHeight {
		f.minHeight = h
	}
}

// Deposit adds amount to the pheromone at c, clamped to [0, MaxPheromone].
// Out-of-bounds cells are ignored.
func (f *Field) Deposit(c components.Cell, amount float64) {
	if !f.Contains(c) {
		return
	}
	v := f.pheromone.At(c.Y, c.X) + amount
	f.pheromone.Set(c.Y, c.X, clamp(v, 0, f.maxPheromone))
}

// PheromoneMass returns the sum of all pheromone values.
func (f *Field) PheromoneMass() float64 {
	return floats.Sum(f.pheromone.RawMatrix().Data)
}

// HeightRows copies the height matrix into row-major slices.
func (f *Field) HeightRows() [][]float64 { return rows(f.height) }

// PheromoneRows copies the pheromone matrix into row-major slices.
func (f *Field) PheromoneRows() [][]float64 { return rows(f.pheromone) }

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for y := range out {
		out[y] = mat.Row(nil, y, m)
	}
	return out
}

// recomputeMinHeight rescans the height matrix.
func (f *Field) recomputeMinHeight() {
	f.minHeight = floats.Min(f.height.RawMatrix().Data)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
