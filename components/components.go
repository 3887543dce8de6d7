// Package components defines the plain data types shared by the field and the colony.
package components

// Cell is an integer grid coordinate. X is the column, Y the row.
type Cell struct {
	X, Y int
}

// Add returns c + o.
func (c Cell) Add(o Cell) Cell { return Cell{c.X + o.X, c.Y + o.Y} }

// Sub returns c - o.
func (c Cell) Sub(o Cell) Cell { return Cell{c.X - o.X, c.Y - o.Y} }

// Scale returns c multiplied component-wise by k.
func (c Cell) Scale(k int) Cell { return Cell{c.X * k, c.Y * k} }

// IsZero reports whether c is the zero offset.
func (c Cell) IsZero() bool { return c.X == 0 && c.Y == 0 }

// Chebyshev returns the king-move distance between two cells.
func Chebyshev(a, b Cell) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// Position is an ant's current cell.
type Position struct {
	Cell Cell
}

// Colony is an ant's home cell. Written once at spawn.
type Colony struct {
	Home Cell
}

// Cargo holds the food source an ant is carrying from, or nil while exploring.
type Cargo struct {
	Food *FoodSource
}

// Carrying reports whether the ant is returning with food.
func (c *Cargo) Carrying() bool { return c.Food != nil }
