package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gridsnake/game/entity"
	"gridsnake/game/manager"
	"gridsnake/game/types"

	"github.com/google/uuid"
)

// Construction errors.
var (
	ErrInvalidGrid      = errors.New("grid width and height must be positive")
	ErrStartOutOfBounds = errors.New("start cell is outside the grid")
	ErrInvalidBody      = errors.New("initial body must be in bounds and contiguous")
	ErrInvalidDirection = errors.New("invalid direction")
)

// DefaultStart is where the snake spawns when no start cell is configured.
var DefaultStart = types.Cell{X: 10, Y: 10}

// Outcome reports what a single Tick did.
type Outcome int

const (
	OutcomeIdle Outcome = iota // paused or already over
	OutcomeMoved
	OutcomeAte
	OutcomeCollided
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeAte:
		return "ate"
	case OutcomeCollided:
		return "collided"
	default:
		return "idle"
	}
}

// Options configure a new Game.
type Options struct {
	Grid types.Grid
	// Start is the single-segment spawn cell. Ignored when Body is set.
	Start types.Cell
	// Body optionally seeds a longer snake, head first.
	Body []types.Cell
	// Direction defaults to Right.
	Direction types.Direction
	// Generator supplies food cells. Defaults to a time-seeded RandGenerator.
	Generator manager.CellGenerator
	Policy    manager.PlacementPolicy
}

// Game is the state of one snake game. All methods are safe for concurrent
// use; mutations are serialized and Snapshot never observes a partial tick.
type Game struct {
	id           uuid.UUID
	grid         types.Grid
	snake        *entity.Snake
	direction    types.Direction
	food         types.Cell
	score        int
	paused       bool
	gameOver     bool
	cause        types.CollisionType
	ticks        uint64
	startTime    time.Time
	endTime      time.Time
	collisionMgr *manager.CollisionManager
	foodMgr      *manager.FoodManager
	mu           sync.RWMutex
}

// New validates opts and returns a running game with food already placed.
func New(opts Options) (*Game, error) {
	if opts.Grid.Width <= 0 || opts.Grid.Height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidGrid, opts.Grid.Width, opts.Grid.Height)
	}

	var snake *entity.Snake
	if len(opts.Body) > 0 {
		snake = entity.NewSnakeWithBody(opts.Body...)
		for _, c := range snake.Body {
			if !opts.Grid.Contains(c) {
				return nil, fmt.Errorf("%w: %v outside %dx%d", ErrInvalidBody, c, opts.Grid.Width, opts.Grid.Height)
			}
		}
		if !snake.Contiguous() {
			return nil, fmt.Errorf("%w: segments are not adjacent", ErrInvalidBody)
		}
	} else {
		if !opts.Grid.Contains(opts.Start) {
			return nil, fmt.Errorf("%w: %v outside %dx%d", ErrStartOutOfBounds, opts.Start, opts.Grid.Width, opts.Grid.Height)
		}
		snake = entity.NewSnake(opts.Start)
	}

	direction := opts.Direction
	if direction == types.None {
		direction = types.Right
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(direction))
	}

	gen := opts.Generator
	if gen == nil {
		gen = manager.NewRandGenerator(uint64(time.Now().UnixNano()))
	}

	g := &Game{
		id:           uuid.New(),
		grid:         opts.Grid,
		snake:        snake,
		direction:    direction,
		startTime:    time.Now(),
		collisionMgr: manager.NewCollisionManager(opts.Grid),
		foodMgr:      manager.NewFoodManager(opts.Grid, gen, opts.Policy),
	}
	g.food = g.foodMgr.PlaceFood(g.snake)
	return g, nil
}

func (g *Game) ID() uuid.UUID {
	return g.id
}

func (g *Game) Grid() types.Grid {
	return g.grid
}

// Tick advances the simulation by one step. It does nothing while paused or
// after the game has ended.
func (g *Game) Tick() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused || g.gameOver {
		return OutcomeIdle
	}

	newHead := g.snake.GetHead().Step(g.direction)

	// A collision ends the game with the snake and food left untouched.
	if collision := g.collisionMgr.CheckCollision(newHead, g.snake); collision != types.NoCollision {
		g.gameOver = true
		g.cause = collision
		g.endTime = time.Now()
		return OutcomeCollided
	}

	g.ticks++
	g.snake.Move(newHead)

	if g.collisionMgr.IsFoodCollision(newHead, g.food) {
		g.score++
		g.food = g.foodMgr.PlaceFood(g.snake)
		return OutcomeAte
	}

	g.snake.RemoveTail()
	return OutcomeMoved
}

// SetDirection queues a new heading for the next tick. Reversing onto the
// snake's own neck is rejected, as is None. Returns whether d was accepted.
func (g *Game) SetDirection(d types.Direction) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gameOver || !d.Valid() || d == g.direction.Opposite() {
		return false
	}
	g.direction = d
	return true
}

// TogglePause flips the pause flag and returns the new value.
func (g *Game) TogglePause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.gameOver {
		return g.paused
	}
	g.paused = !g.paused
	return g.paused
}

// Snapshot returns a copy of the current state for rendering.
func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return Snapshot{
		ID:        g.id.String(),
		Width:     g.grid.Width,
		Height:    g.grid.Height,
		Snake:     g.snake.Cells(),
		Food:      g.food,
		Direction: g.direction,
		Score:     g.score,
		Paused:    g.paused,
		GameOver:  g.gameOver,
		Cause:     g.cause,
		Tick:      g.ticks,
	}
}

// Record summarizes a finished game for the scoreboard.
func (g *Game) Record() manager.GameRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()

	end := g.endTime
	if end.IsZero() {
		end = time.Now()
	}
	return manager.GameRecord{
		ID:        g.id.String(),
		Score:     g.score,
		Length:    g.snake.Len(),
		Ticks:     g.ticks,
		Cause:     g.cause,
		StartTime: g.startTime,
		EndTime:   end,
	}
}
