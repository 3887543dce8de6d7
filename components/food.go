package components

// FoodSource is a depletable point resource. Depleted sources stay on the
// field but report no bites left.
type FoodSource struct {
	Cell Cell

	bites    int
	maxBites int
}

// NewFoodSource creates a food source at cell with maxBites capacity.
// Negative capacities are treated as empty.
func NewFoodSource(cell Cell, maxBites int) *FoodSource {
	if maxBites < 0 {
		maxBites = 0
	}
	return &FoodSource{Cell: cell, bites: maxBites, maxBites: maxBites}
}

// Bites returns the number of bites remaining.
func (f *FoodSource) Bites() int { return f.bites }

// MaxBites returns the initial capacity.
func (f *FoodSource) MaxBites() int { return f.maxBites }

// HasBitesLeft reports whether the source can still be bitten.
func (f *FoodSource) HasBitesLeft() bool { return f.bites > 0 }

// TakeBite consumes one bite. It returns false and leaves the source
// unchanged when nothing is left.
func (f *FoodSource) TakeBite() bool {
	if f.bites <= 0 {
		return false
	}
	f.bites--
	return true
}
