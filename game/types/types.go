package types

import (
	"fmt"
	"strings"
)

// Cell is a position on the game grid. X grows to the right, Y grows down.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the cell one unit away in the given direction.
func (c Cell) Step(d Direction) Cell {
	dx, dy := d.Delta()
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Manhattan returns the Manhattan distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid represents the game grid dimensions
type Grid struct {
	Width  int
	Height int
}

// Contains reports whether c lies inside [0,Width) x [0,Height).
func (g Grid) Contains(c Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// Area is the number of cells in the grid.
func (g Grid) Area() int {
	return g.Width * g.Height
}

// GridFromViewport derives grid dimensions from a viewport and the size of
// one cell in the same units. Partial cells at the edges are dropped.
func GridFromViewport(viewW, viewH, cellW, cellH int) Grid {
	if cellW <= 0 || cellH <= 0 {
		return Grid{}
	}
	return Grid{Width: viewW / cellW, Height: viewH / cellH}
}

// Direction is one of the four cardinal headings.
type Direction int

const (
	None Direction = iota
	Up
	Right
	Down
	Left
)

// Delta returns the (dx, dy) offset of one step. Up decreases Y.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the reverse heading. None has no opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Right:
		return Left
	case Down:
		return Up
	case Left:
		return Right
	default:
		return None
	}
}

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "none"
	}
}

// ParseDirection is the inverse of Direction.String, case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "right":
		return Right, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	}
	return None, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	if string(b) == "none" {
		*d = None
		return nil
	}
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CollisionType represents the type of collision that ended a game
type CollisionType int

const (
	NoCollision CollisionType = iota
	WallCollision
	SelfCollision
)

func (c CollisionType) String() string {
	switch c {
	case WallCollision:
		return "wall"
	case SelfCollision:
		return "self"
	default:
		return "none"
	}
}

func (c CollisionType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CollisionType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "wall":
		*c = WallCollision
	case "self":
		*c = SelfCollision
	case "none", "":
		*c = NoCollision
	default:
		return fmt.Errorf("unknown collision type %q", b)
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
