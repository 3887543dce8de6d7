package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/landscaper/components"
)

func TestExcavate(t *testing.T) {
	tests := []struct {
		name          string
		current, next components.Cell
		want          map[components.Cell]float64 // height change per touched cell
	}{
		{
			name:    "east",
			current: components.Cell{X: 2, Y: 2},
			next:    components.Cell{X: 3, Y: 2},
			want: map[components.Cell]float64{
				{X: 3, Y: 2}: -1,
				{X: 2, Y: 2}: 0.4,
				{X: 2, Y: 3}: 0.2,
				{X: 2, Y: 1}: 0.2,
				{X: 3, Y: 3}: 0.1,
				{X: 3, Y: 1}: 0.1,
			},
		},
		{
			name:    "north",
			current: components.Cell{X: 2, Y: 2},
			next:    components.Cell{X: 2, Y: 1},
			want: map[components.Cell]float64{
				{X: 2, Y: 1}: -1,
				{X: 2, Y: 2}: 0.4,
				{X: 1, Y: 2}: 0.2,
				{X: 3, Y: 2}: 0.2,
				{X: 1, Y: 1}: 0.1,
				{X: 3, Y: 1}: 0.1,
			},
		},
		{
			name:    "south-east",
			current: components.Cell{X: 2, Y: 2},
			next:    components.Cell{X: 3, Y: 3},
			want: map[components.Cell]float64{
				{X: 3, Y: 3}: -1,
				{X: 2, Y: 2}: 0.4,
				{X: 3, Y: 2}: 0.2,
				{X: 2, Y: 3}: 0.2,
				{X: 4, Y: 2}: 0.1,
				{X: 2, Y: 4}: 0.1,
			},
		},
		{
			name:    "north-west",
			current: components.Cell{X: 2, Y: 2},
			next:    components.Cell{X: 1, Y: 1},
			want: map[components.Cell]float64{
				{X: 1, Y: 1}: -1,
				{X: 2, Y: 2}: 0.4,
				{X: 1, Y: 2}: 0.2,
				{X: 2, Y: 1}: 0.2,
				{X: 0, Y: 2}: 0.1,
				{X: 2, Y: 0}: 0.1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := flatField(t, 5, false)
			Excavate(f, tt.current, tt.next, 1)

			for y := 0; y < 5; y++ {
				for x := 0; x < 5; x++ {
					c := components.Cell{X: x, Y: y}
					want := 1 + tt.want[c]
					if got := f.Height(c); math.Abs(got-want) > 1e-12 {
						t.Errorf("height at %v = %v, want %v", c, got, want)
					}
				}
			}
			if f.MinHeight() != 0 {
				t.Errorf("MinHeight = %v, want 0", f.MinHeight())
			}
		})
	}
}

func TestExcavateConservesSoilInside(t *testing.T) {
	f := flatField(t, 7, false)
	before := f.heightSum()

	Excavate(f, components.Cell{X: 3, Y: 3}, components.Cell{X: 4, Y: 3}, 0.05)
	Excavate(f, components.Cell{X: 4, Y: 3}, components.Cell{X: 3, Y: 4}, 0.05)

	if math.Abs(f.heightSum()-before) > 1e-12 {
		t.Errorf("interior digging changed total height by %v", f.heightSum()-before)
	}
}

func TestExcavateEdgeAndStay(t *testing.T) {
	f := flatField(t, 5, false)

	Excavate(f, components.Cell{X: 1, Y: 1}, components.Cell{X: 1, Y: 1}, 1)
	if f.heightSum() != 25 {
		t.Errorf("zero move changed heights, sum = %v", f.heightSum())
	}

	// Flank cells off the grid are skipped.
	Excavate(f, components.Cell{X: 0, Y: 0}, components.Cell{X: 1, Y: 0}, 1)
	if got := f.Height(components.Cell{X: 1, Y: 0}); got != 0 {
		t.Errorf("dug cell = %v, want 0", got)
	}
}

func TestTrailDeposit(t *testing.T) {
	home := components.Cell{}
	food := components.Cell{X: 3, Y: 4} // 5 from home

	tests := []struct {
		name    string
		current components.Cell
		home    components.Cell
		food    components.Cell
		minFrac float64
		want    float64
	}{
		{"at food", food, home, food, 0, 0.2},
		{"halfway", components.Cell{X: 0, Y: 2}, home, components.Cell{X: 0, Y: 4}, 0, 0.1},
		{"at home", home, home, food, 0, 0},
		{"floor", home, home, food, 0.25, 0.05},
		{"above floor", components.Cell{X: 3, Y: 0}, home, food, 0.25, 0.12},
		{"food at home", components.Cell{X: 2, Y: 2}, home, home, 0, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrailDeposit(tt.current, tt.home, tt.food, 0.2, tt.minFrac)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("TrailDeposit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLayTrailClamps(t *testing.T) {
	f := flatField(t, 5, false)
	c := components.Cell{X: 4, Y: 4}
	ps := PheromoneSettings{Deposit: 0.7}

	LayTrail(f, c, components.Cell{}, c, ps)
	LayTrail(f, c, components.Cell{}, c, ps)
	if got := f.Pheromone(c); got != f.MaxPheromone() {
		t.Errorf("pheromone = %v, want clamp at %v", got, f.MaxPheromone())
	}
}

func (f *Field) heightSum() float64 {
	var s float64
	for _, v := range f.height.RawMatrix().Data {
		s += v
	}
	return s
}
