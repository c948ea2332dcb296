package manager

import (
	"fmt"
	"strings"
	"sync"

	"gridsnake/game/entity"
	"gridsnake/game/types"

	"golang.org/x/exp/rand"
)

// CellGenerator draws a candidate food cell inside grid.
type CellGenerator interface {
	RandomCell(grid types.Grid) types.Cell
}

// RandGenerator draws cells uniformly from a seeded source.
type RandGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandGenerator(seed uint64) *RandGenerator {
	return &RandGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *RandGenerator) RandomCell(grid types.Grid) types.Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	return types.Cell{
		X: g.rng.Intn(grid.Width),
		Y: g.rng.Intn(grid.Height),
	}
}

// SequenceGenerator replays a fixed list of cells, wrapping around at the end.
// Cells outside the grid are folded back in with modulo arithmetic.
type SequenceGenerator struct {
	mu    sync.Mutex
	cells []types.Cell
	next  int
}

func NewSequenceGenerator(cells ...types.Cell) *SequenceGenerator {
	return &SequenceGenerator{cells: cells}
}

func (g *SequenceGenerator) RandomCell(grid types.Grid) types.Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.cells) == 0 {
		return types.Cell{}
	}
	c := g.cells[g.next%len(g.cells)]
	g.next++
	return types.Cell{X: mod(c.X, grid.Width), Y: mod(c.Y, grid.Height)}
}

// Draws reports how many cells have been handed out so far.
func (g *SequenceGenerator) Draws() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next
}

// PlacementPolicy decides what happens when a draw lands on the snake.
type PlacementPolicy int

const (
	// SingleDraw accepts the first draw even if it is on the snake.
	SingleDraw PlacementPolicy = iota
	// AvoidSnake redraws until the cell is free.
	AvoidSnake
)

func (p PlacementPolicy) String() string {
	switch p {
	case AvoidSnake:
		return "avoid"
	default:
		return "single"
	}
}

func ParsePlacementPolicy(s string) (PlacementPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "":
		return SingleDraw, nil
	case "avoid":
		return AvoidSnake, nil
	}
	return SingleDraw, fmt.Errorf("unknown food policy %q", s)
}

// drawsPerCell bounds AvoidSnake redraws relative to the grid area.
const drawsPerCell = 4

type FoodManager struct {
	grid   types.Grid
	gen    CellGenerator
	policy PlacementPolicy
}

func NewFoodManager(grid types.Grid, gen CellGenerator, policy PlacementPolicy) *FoodManager {
	return &FoodManager{
		grid:   grid,
		gen:    gen,
		policy: policy,
	}
}

// PlaceFood picks the next food cell for snake.
func (fm *FoodManager) PlaceFood(snake *entity.Snake) types.Cell {
	food := fm.gen.RandomCell(fm.grid)
	if fm.policy == SingleDraw || snake == nil {
		return food
	}

	for i := 0; i < fm.grid.Area()*drawsPerCell; i++ {
		if !snake.Occupies(food) {
			return food
		}
		food = fm.gen.RandomCell(fm.grid)
	}
	if !snake.Occupies(food) {
		return food
	}

	// Unlucky generator or a nearly full grid: take the first free cell.
	for y := 0; y < fm.grid.Height; y++ {
		for x := 0; x < fm.grid.Width; x++ {
			c := types.Cell{X: x, Y: y}
			if !snake.Occupies(c) {
				return c
			}
		}
	}
	// The snake fills the grid; nothing better exists.
	return food
}

func mod(v, n int) int {
	if n <= 0 {
		return 0
	}
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
