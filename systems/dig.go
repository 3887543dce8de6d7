package systems

import (
	"math"

	"github.com/pthm-cable/landscaper/components"
)

// Soil displacement weights, as fractions of the dig amount.
const (
	nearFlankShare = 0.2
	farFlankShare  = 0.1
	originShare    = 0.4
)

// Excavate lowers next by amount and piles part of the removed soil beside
// the move. An axis-aligned move feeds the two cells perpendicular to the
// origin (0.2) and the two perpendicular to next (0.1). A diagonal move feeds
// the cells one (0.2) and two (0.1) steps along each component axis. The
// origin regains 0.4. Flank cells outside the field are skipped and a zero
// move changes nothing.
func Excavate(f *Field, current, next components.Cell, amount float64) {
	dir := next.Sub(current)
	if dir.IsZero() {
		return
	}
	dir = components.Cell{X: sign(dir.X), Y: sign(dir.Y)}

	f.AddHeight(next, -amount)

	if dir.X == 0 || dir.Y == 0 {
		perp := components.Cell{X: -dir.Y, Y: dir.X}
		for i := 0; i < 2; i++ {
			share := flankShare(i) * amount
			f.AddHeight(current.Add(perp).Add(dir.Scale(i)), share)
			f.AddHeight(current.Sub(perp).Add(dir.Scale(i)), share)
		}
	} else {
		horizontal := components.Cell{X: dir.X}
		vertical := components.Cell{Y: dir.Y}
		for i := 0; i < 2; i++ {
			share := flankShare(i) * amount
			f.AddHeight(current.Add(horizontal.Scale(i+1)), share)
			f.AddHeight(current.Add(vertical.Scale(i+1)), share)
		}
	}

	f.AddHeight(current, originShare*amount)
}

func flankShare(i int) float64 {
	if i == 0 {
		return nearFlankShare
	}
	return farFlankShare
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// TrailDeposit returns the pheromone a returning ant drops at current. It
// shrinks linearly with the remaining distance home, relative to the
// food-to-home distance, and never drops below minFraction of base.
func TrailDeposit(current, home, food components.Cell, base, minFraction float64) float64 {
	total := distance(food, home)
	if total == 0 {
		return base
	}
	return math.Max(base*distance(current, home)/total, base*minFraction)
}

func distance(a, b components.Cell) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// LayTrail deposits the returning-ant pheromone at current.
func LayTrail(f *Field, current, home, food components.Cell, ps PheromoneSettings) {
	f.Deposit(current, TrailDeposit(current, home, food, ps.Deposit, ps.MinDepositFraction))
}
