package systems

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/landscaper/components"
)

// SelectionContext tells the policy which portions apply.
// It is either Exploring or Returning.
type SelectionContext interface {
	selectionContext()
}

// Exploring ants weigh pheromone, slope and noise.
type Exploring struct{}

// Returning ants weigh slope and the heading towards Destination.
type Returning struct {
	Destination components.Cell
}

func (Exploring) selectionContext() {}
func (Returning) selectionContext() {}

// Candidate is a neighbor with its normalized selection probability.
type Candidate struct {
	Cell        components.Cell
	Probability float64
}

// Probabilities computes the next-cell distribution for an ant at current.
// neighbors must already be bounds-filtered. The result is in neighbor order
// and sums to 1 whenever neighbors is non-empty. When every portion is zero
// the distribution is uniform.
func Probabilities(f *Field, current components.Cell, neighbors []components.Cell, ctx SelectionContext, p PolicySettings, rng Rand) []Candidate {
	k := len(neighbors)
	if k == 0 {
		return nil
	}

	curH := f.Height(current)
	minH, maxH := curH, curH
	heights := make([]float64, k)
	for i, n := range neighbors {
		h := f.Height(n)
		heights[i] = h
		minH = math.Min(minH, h)
		maxH = math.Max(maxH, h)
	}

	w := p.Weights
	sums := make([]float64, k)
	for i, n := range neighbors {
		portion := slopePortion(curH, heights[i], minH, maxH, p.SlopeMode) * w.Slope

		switch c := ctx.(type) {
		case Returning:
			portion += directionPortion(current, n, c.Destination) * w.Direction
		default:
			portion += f.Pheromone(n) / f.maxPheromone * w.Pheromone
			portion += rng.Float64() * w.Random
		}
		sums[i] = portion
	}

	out := make([]Candidate, k)
	total := floats.Sum(sums)
	if !(total > 0) || math.IsInf(total, 0) {
		u := 1 / float64(k)
		for i, n := range neighbors {
			out[i] = Candidate{Cell: n, Probability: u}
		}
		return out
	}
	for i, n := range neighbors {
		out[i] = Candidate{Cell: n, Probability: sums[i] / total}
	}
	return out
}

// slopePortion maps a neighbor height to [0, 1] using the neighborhood range.
// A flat neighborhood scores 1 everywhere.
func slopePortion(from, to, minH, maxH float64, mode SlopeMode) float64 {
	if minH == maxH {
		return 1
	}
	minDiff := math.Abs(minH - from)
	maxDiff := math.Abs(maxH - from)

	if mode == SlopeAbsolute {
		return 1 - math.Abs(to-from)/math.Max(minDiff, maxDiff)
	}
	return 1 - (to-from+minDiff)/(minDiff+maxDiff)
}

// directionPortion is 1 for a step straight at dest, 0 for a step straight
// away, and 0 for staying put.
func directionPortion(current, n, dest components.Cell) float64 {
	step := n.Sub(current)
	if step.IsZero() {
		return 0
	}
	return 1 - angleDeg(dest.Sub(current), step)/180
}

// angleDeg returns the unsigned angle between a and b in degrees. A zero
// vector yields 0. Parallel vectors give exactly 0 and opposite ones exactly
// 180.
func angleDeg(a, b components.Cell) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	ax, ay := float64(a.X), float64(a.Y)
	bx, by := float64(b.X), float64(b.Y)
	cross := math.Abs(ax*by - ay*bx)
	dot := ax*bx + ay*by
	return math.Atan2(cross, dot) * 180 / math.Pi
}

// Roulette picks a candidate with a draw r in [0, 1). Candidates are ranked
// by ascending probability (ties keep their order) and the first bucket
// with cum[i] <= r < cum[i+1] wins. If rounding leaves r past the last
// bound, the last ranked candidate is returned. candidates must not be empty.
func Roulette(candidates []Candidate, r float64) components.Cell {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability < ranked[j].Probability
	})

	probs := make([]float64, len(ranked))
	for i, c := range ranked {
		probs[i] = c.Probability
	}
	cum := floats.CumSum(make([]float64, len(probs)), probs)

	lo := 0.0
	for i, hi := range cum {
		if r >= lo && r < hi {
			return ranked[i].Cell
		}
		lo = hi
	}
	return ranked[len(ranked)-1].Cell
}

// ChooseNext runs the policy and samples it with one draw from rng.
// With no neighbors the ant stays on current.
func ChooseNext(f *Field, current components.Cell, neighbors []components.Cell, ctx SelectionContext, p PolicySettings, rng Rand) components.Cell {
	candidates := Probabilities(f, current, neighbors, ctx, p, rng)
	if len(candidates) == 0 {
		return current
	}
	return Roulette(candidates, rng.Float64())
}
