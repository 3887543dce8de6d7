package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/landscaper/components"
)

func sumProbabilities(cs []Candidate) float64 {
	var s float64
	for _, c := range cs {
		s += c.Probability
	}
	return s
}

func TestProbabilitiesNormalized(t *testing.T) {
	s := FieldSettings{
		Dim:          16,
		BaseHeight:   1,
		MaxPheromone: 1,
		Terrain:      TerrainSettings{Amplitude: 1, Scale: 3, Octaves: 2, Lacunarity: 2, Gain: 0.5},
	}
	rng := rand.New(rand.NewSource(7))
	f, err := NewField(s, rng)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	for i := 0; i < 40; i++ {
		f.Deposit(f.RandomCell(rng), rng.Float64())
	}

	policies := []struct {
		name string
		mode SlopeMode
		ctx  SelectionContext
	}{
		{"exploring minmax", SlopeMinMax, Exploring{}},
		{"exploring absolute", SlopeAbsolute, Exploring{}},
		{"returning minmax", SlopeMinMax, Returning{Destination: components.Cell{X: 1, Y: 14}}},
		{"returning absolute", SlopeAbsolute, Returning{Destination: components.Cell{X: 15, Y: 0}}},
	}

	for _, tt := range policies {
		t.Run(tt.name, func(t *testing.T) {
			p := PolicySettings{
				Weights:   Weights{Pheromone: 1, Slope: 1, Direction: 1, Random: 1},
				SlopeMode: tt.mode,
			}
			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					c := components.Cell{X: x, Y: y}
					cs := Probabilities(f, c, f.Neighbors(c, 1, false), tt.ctx, p, rng)
					if math.Abs(sumProbabilities(cs)-1) > 1e-9 {
						t.Fatalf("at %v: probabilities sum to %v", c, sumProbabilities(cs))
					}
					for _, cand := range cs {
						if cand.Probability < 0 {
							t.Fatalf("at %v: negative probability %v", c, cand.Probability)
						}
					}
				}
			}
		})
	}
}

func TestProbabilitiesUniformFallback(t *testing.T) {
	f := flatField(t, 5, false)
	c := components.Cell{X: 2, Y: 2}
	ns := f.Neighbors(c, 1, false)

	p := PolicySettings{} // all weights zero
	cs := Probabilities(f, c, ns, Exploring{}, p, scriptedRand{f: 0.5})
	if len(cs) != len(ns) {
		t.Fatalf("got %d candidates, want %d", len(cs), len(ns))
	}
	for i, cand := range cs {
		if cand.Cell != ns[i] {
			t.Errorf("candidate %d is %v, want neighbor order %v", i, cand.Cell, ns[i])
		}
		if math.Abs(cand.Probability-1.0/8) > 1e-12 {
			t.Errorf("candidate %v: probability %v, want 1/8", cand.Cell, cand.Probability)
		}
	}

	if got := Probabilities(f, c, nil, Exploring{}, p, scriptedRand{}); got != nil {
		t.Errorf("no neighbors: got %v, want nil", got)
	}
}

func TestProbabilitiesPheromoneOnly(t *testing.T) {
	f := flatField(t, 5, false)
	c := components.Cell{X: 0, Y: 0}
	f.Deposit(components.Cell{X: 1, Y: 0}, 0.3)
	f.Deposit(components.Cell{X: 1, Y: 1}, 0.1)

	p := PolicySettings{Weights: Weights{Pheromone: 1}}
	cs := Probabilities(f, c, f.Neighbors(c, 1, false), Exploring{}, p, scriptedRand{})

	want := map[components.Cell]float64{
		{X: 1, Y: 0}: 0.75,
		{X: 0, Y: 1}: 0,
		{X: 1, Y: 1}: 0.25,
	}
	for _, cand := range cs {
		if math.Abs(cand.Probability-want[cand.Cell]) > 1e-12 {
			t.Errorf("%v: probability %v, want %v", cand.Cell, cand.Probability, want[cand.Cell])
		}
	}
}

func TestSlopePortion(t *testing.T) {
	tests := []struct {
		name       string
		from, to   float64
		minH, maxH float64
		mode       SlopeMode
		want       float64
	}{
		{"flat", 1, 1, 1, 1, SlopeMinMax, 1},
		{"minmax downhill", 1, 0, 0, 2, SlopeMinMax, 1},
		{"minmax level", 1, 1, 0, 2, SlopeMinMax, 0.5},
		{"minmax uphill", 1, 2, 0, 2, SlopeMinMax, 0},
		{"absolute level", 1, 1, 0, 2, SlopeAbsolute, 1},
		{"absolute downhill", 1, 0, 0, 2, SlopeAbsolute, 0},
		{"absolute half", 1, 1.5, 0.5, 3, SlopeAbsolute, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slopePortion(tt.from, tt.to, tt.minH, tt.maxH, tt.mode)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("slopePortion = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirectionPortion(t *testing.T) {
	origin := components.Cell{}
	dest := components.Cell{X: 4, Y: 4}

	tests := []struct {
		name string
		n    components.Cell
		want float64
	}{
		{"straight at", components.Cell{X: 1, Y: 1}, 1},
		{"45 degrees", components.Cell{X: 1, Y: 0}, 0.75},
		{"stay", origin, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := directionPortion(origin, tt.n, dest)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("directionPortion(%v) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}

	away := directionPortion(components.Cell{X: 2, Y: 2}, components.Cell{X: 3, Y: 3}, components.Cell{})
	if math.Abs(away) > 1e-9 {
		t.Errorf("step straight away = %v, want 0", away)
	}
}

func TestAngleDegExact(t *testing.T) {
	tests := []struct {
		a, b components.Cell
		want float64
	}{
		{components.Cell{X: 4, Y: 4}, components.Cell{X: 1, Y: 1}, 0},
		{components.Cell{X: -3, Y: 6}, components.Cell{X: -1, Y: 2}, 0},
		{components.Cell{X: 4, Y: 4}, components.Cell{X: -1, Y: -1}, 180},
		{components.Cell{X: 0, Y: 5}, components.Cell{X: 0, Y: -1}, 180},
		{components.Cell{X: 0, Y: 0}, components.Cell{X: 1, Y: 1}, 0},
	}
	for _, tt := range tests {
		if got := angleDeg(tt.a, tt.b); got != tt.want {
			t.Errorf("angleDeg(%v, %v) = %v, want exactly %v", tt.a, tt.b, got, tt.want)
		}
	}
	if got := angleDeg(components.Cell{X: 1}, components.Cell{Y: 1}); math.Abs(got-90) > 1e-12 {
		t.Errorf("right angle = %v, want 90", got)
	}

	// Exact extremes give exact direction portions.
	if got := directionPortion(components.Cell{}, components.Cell{X: 1, Y: 1}, components.Cell{X: 4, Y: 4}); got != 1 {
		t.Errorf("straight at = %v, want exactly 1", got)
	}
	if got := directionPortion(components.Cell{X: 2, Y: 2}, components.Cell{X: 3, Y: 3}, components.Cell{}); got != 0 {
		t.Errorf("straight away = %v, want exactly 0", got)
	}
}

func TestRoulette(t *testing.T) {
	a := components.Cell{X: 0, Y: 0}
	b := components.Cell{X: 1, Y: 0}
	c := components.Cell{X: 2, Y: 0}
	cs := []Candidate{{a, 0.2}, {b, 0.5}, {c, 0.3}}

	// Ranked ascending: a [0, .2), c [.2, .5), b [.5, 1)
	tests := []struct {
		r    float64
		want components.Cell
	}{
		{0, a},
		{0.1, a},
		{0.2, c},
		{0.49, c},
		{0.51, b},
		{0.999, b},
		{1.0, b}, // past the last bound
	}

	for _, tt := range tests {
		if got := Roulette(cs, tt.r); got != tt.want {
			t.Errorf("Roulette(r=%v) = %v, want %v", tt.r, got, tt.want)
		}
	}

	if cs[0].Cell != a || cs[1].Cell != b || cs[2].Cell != c {
		t.Error("Roulette must not reorder its input")
	}
}

func TestRouletteOvershoot(t *testing.T) {
	// Rounding can leave the cumulative sum short of the draw.
	cs := []Candidate{
		{components.Cell{X: 1}, 0.6},
		{components.Cell{X: 2}, 0.3},
	}
	if got := Roulette(cs, 0.95); got != (components.Cell{X: 1}) {
		t.Errorf("overshoot returned %v, want the last ranked candidate", got)
	}
}

func TestRouletteTiesKeepOrder(t *testing.T) {
	cs := []Candidate{
		{components.Cell{X: 1}, 0.25},
		{components.Cell{X: 2}, 0.25},
		{components.Cell{X: 3}, 0.25},
		{components.Cell{X: 4}, 0.25},
	}
	if got := Roulette(cs, 0.1); got.X != 1 {
		t.Errorf("low draw picked %v, want first", got)
	}
	if got := Roulette(cs, 0.99); got.X != 4 {
		t.Errorf("high draw picked %v, want last", got)
	}
}

func TestChooseNextNoNeighbors(t *testing.T) {
	f := flatField(t, 1, false)
	c := components.Cell{}
	got := ChooseNext(f, c, f.Neighbors(c, 1, false), Exploring{}, PolicySettings{}, scriptedRand{f: 0.5})
	if got != c {
		t.Errorf("ChooseNext = %v, want to stay on %v", got, c)
	}
}

func TestChooseNextHomesIn(t *testing.T) {
	f := flatField(t, 5, false)
	p := PolicySettings{Weights: Weights{Direction: 1}}
	greedy := scriptedRand{f: 0.999}

	food := components.Cell{X: 4, Y: 4}
	c := components.Cell{}
	dist := components.Chebyshev(c, food)
	for step := 0; step < 8 && dist > 1; step++ {
		next := ChooseNext(f, c, f.Neighbors(c, 1, false), Returning{Destination: food}, p, greedy)
		d := components.Chebyshev(next, food)
		if d >= dist {
			t.Fatalf("step %d: moved %v -> %v, distance %d -> %d", step, c, next, dist, d)
		}
		c, dist = next, d
	}
	if dist > 1 {
		t.Errorf("ended at %v, not adjacent to %v", c, food)
	}
}
