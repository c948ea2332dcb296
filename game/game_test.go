package game

import (
	"errors"
	"reflect"
	"testing"

	"gridsnake/game/manager"
	"gridsnake/game/types"
)

func c(x, y int) types.Cell { return types.Cell{X: x, Y: y} }

// newTestGame builds a game whose food draws come from cells, in order.
func newTestGame(t *testing.T, grid types.Grid, body []types.Cell, dir types.Direction, cells ...types.Cell) *Game {
	t.Helper()
	g, err := New(Options{
		Grid:      grid,
		Body:      body,
		Direction: dir,
		Generator: manager.NewSequenceGenerator(cells...),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNewDefaults(t *testing.T) {
	g, err := New(Options{Grid: types.Grid{Width: 20, Height: 20}, Start: DefaultStart})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := g.Snapshot()
	if !reflect.DeepEqual(s.Snake, []types.Cell{DefaultStart}) {
		t.Errorf("Snake = %v, want [%v]", s.Snake, DefaultStart)
	}
	if s.Direction != types.Right {
		t.Errorf("Direction = %v, want right", s.Direction)
	}
	if s.Score != 0 || s.Paused || s.GameOver {
		t.Errorf("unexpected initial flags: %+v", s)
	}
	if !g.Grid().Contains(s.Food) {
		t.Errorf("food %v outside grid", s.Food)
	}
	if s.ID == "" || s.ID != g.ID().String() {
		t.Errorf("snapshot ID %q does not match game ID %s", s.ID, g.ID())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"zero width", Options{Grid: types.Grid{Width: 0, Height: 10}}, ErrInvalidGrid},
		{"negative height", Options{Grid: types.Grid{Width: 10, Height: -1}}, ErrInvalidGrid},
		{"start outside", Options{Grid: types.Grid{Width: 5, Height: 5}, Start: c(5, 0)}, ErrStartOutOfBounds},
		{"body outside", Options{Grid: types.Grid{Width: 5, Height: 5}, Body: []types.Cell{c(4, 0), c(5, 0)}}, ErrInvalidBody},
		{"body gap", Options{Grid: types.Grid{Width: 5, Height: 5}, Body: []types.Cell{c(0, 0), c(2, 0)}}, ErrInvalidBody},
		{"bad direction", Options{Grid: types.Grid{Width: 5, Height: 5}, Direction: types.Direction(9)}, ErrInvalidDirection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("New error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFoodEatScenario(t *testing.T) {
	g := newTestGame(t, types.Grid{Width: 20, Height: 20}, []types.Cell{c(5, 5)}, types.Right, c(6, 5), c(0, 0))

	if got := g.Tick(); got != OutcomeAte {
		t.Fatalf("Tick = %v, want ate", got)
	}
	s := g.Snapshot()
	if !reflect.DeepEqual(s.Snake, []types.Cell{c(6, 5), c(5, 5)}) {
		t.Errorf("Snake = %v, want [(6,5) (5,5)]", s.Snake)
	}
	if s.Score != 1 {
		t.Errorf("Score = %d, want 1", s.Score)
	}
	if s.Food == c(6, 5) || s.Food == c(5, 5) {
		t.Errorf("food not relocated off the snake: %v", s.Food)
	}
}

func TestNoEatScenario(t *testing.T) {
	g := newTestGame(t, types.Grid{Width: 20, Height: 20}, []types.Cell{c(5, 5)}, types.Right, c(10, 10))

	if got := g.Tick(); got != OutcomeMoved {
		t.Fatalf("Tick = %v, want moved", got)
	}
	s := g.Snapshot()
	if !reflect.DeepEqual(s.Snake, []types.Cell{c(6, 5)}) {
		t.Errorf("Snake = %v, want [(6,5)]", s.Snake)
	}
	if s.Score != 0 {
		t.Errorf("Score = %d, want 0", s.Score)
	}
	if s.Food != c(10, 10) {
		t.Errorf("Food = %v, want unchanged (10,10)", s.Food)
	}
}

func TestWallCollisionLeavesSnakeUntouched(t *testing.T) {
	tests := []struct {
		name string
		head types.Cell
		dir  types.Direction
	}{
		{"right", c(9, 3), types.Right},
		{"left", c(0, 3), types.Left},
		{"up", c(3, 0), types.Up},
		{"down", c(3, 9), types.Down},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, types.Grid{Width: 10, Height: 10}, []types.Cell{tt.head}, tt.dir, c(5, 5))
			before := g.Snapshot()

			if got := g.Tick(); got != OutcomeCollided {
				t.Fatalf("Tick = %v, want collided", got)
			}
			after := g.Snapshot()
			if !after.GameOver || after.Cause != types.WallCollision {
				t.Errorf("GameOver=%t Cause=%v, want wall game over", after.GameOver, after.Cause)
			}
			if !reflect.DeepEqual(after.Snake, before.Snake) {
				t.Errorf("Snake changed on collision: %v -> %v", before.Snake, after.Snake)
			}
			if after.Food != before.Food || after.Score != before.Score {
				t.Error("food or score changed on collision")
			}
		})
	}
}

func TestSelfCollision(t *testing.T) {
	// Head at (2,2) turning down into (2,3), which is the fourth segment.
	body := []types.Cell{c(2, 2), c(3, 2), c(3, 3), c(2, 3), c(1, 3)}
	g := newTestGame(t, types.Grid{Width: 10, Height: 10}, body, types.Left, c(8, 8))
	if !g.SetDirection(types.Down) {
		t.Fatal("SetDirection(Down) rejected")
	}
	if got := g.Tick(); got != OutcomeCollided {
		t.Fatalf("Tick = %v, want collided", got)
	}
	s := g.Snapshot()
	if !s.GameOver || s.Cause != types.SelfCollision {
		t.Errorf("GameOver=%t Cause=%v, want self game over", s.GameOver, s.Cause)
	}
	if !reflect.DeepEqual(s.Snake, body) {
		t.Errorf("Snake changed on collision: %v", s.Snake)
	}
}

func TestMovingIntoVacatingTailIsFatal(t *testing.T) {
	// A 2x2 loop: the head steps onto the tail cell that would be freed this tick.
	body := []types.Cell{c(1, 0), c(1, 1), c(0, 1), c(0, 0)}
	g := newTestGame(t, types.Grid{Width: 5, Height: 5}, body, types.Left, c(4, 4))

	if got := g.Tick(); got != OutcomeCollided {
		t.Fatalf("Tick = %v, want collided", got)
	}
	if s := g.Snapshot(); s.Cause != types.SelfCollision {
		t.Errorf("Cause = %v, want self", s.Cause)
	}
}

func TestReversalRejection(t *testing.T) {
	g := newTestGame(t, types.Grid{Width: 20, Height: 20}, []types.Cell{c(5, 5)}, types.Right, c(0, 0))

	if g.SetDirection(types.Left) {
		t.Error("SetDirection(Left) accepted while heading right")
	}
	if d := g.Snapshot().Direction; d != types.Right {
		t.Errorf("Direction = %v, want right", d)
	}
	if !g.SetDirection(types.Up) {
		t.Error("SetDirection(Up) rejected")
	}
	// Down is now judged against the queued Up.
	if g.SetDirection(types.Down) {
		t.Error("SetDirection(Down) accepted right after Up")
	}
	if g.SetDirection(types.None) {
		t.Error("SetDirection(None) accepted")
	}
}

func TestSetDirectionAcceptsPerpendicular(t *testing.T) {
	for _, d := range []types.Direction{types.Up, types.Down} {
		g := newTestGame(t, types.Grid{Width: 20, Height: 20}, []types.Cell{c(5, 5)}, types.Right, c(0, 0))
		if !g.SetDirection(d) {
			t.Errorf("SetDirection(%v) rejected", d)
		}
		if got := g.Snapshot().Direction; got != d {
			t.Errorf("Direction = %v, want %v", got, d)
		}
	}
}

func TestLastDirectionWins(t *testing.T) {
	g := newTestGame(t, types.Grid{Width: 20, Height: 20}, []types.Cell{c(5, 5)}, types.Right, c(0, 0))
	g.SetDirection(types.Up)
	g.SetDirection(types.Right)
	g.Tick()
	if head := g.Snapshot().Head(); head != c(6, 5) {
		t.Errorf("head = %v, want (6,5)", head)
	}
}

func TestPauseIdempotence(t *testing.T) {
	g := newTestGame(t, types.Grid{Width: 20, Height: 20}, []types.Cell{c(5, 5)}, types.Right, c(0, 0))
	before := g.Snapshot()

	if !g.TogglePause() {
		t.Fatal("first TogglePause should pause")
	}
	if g.TogglePause() {
		t.Fatal("second TogglePause should resume")
	}
	if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("state changed across pause/resume:\n%+v\n%+v", before, after)
	}
}

func TestTickWhilePausedIsNoop(t *testing.T) {
	g := newTestGame(t, types.Grid{Width: 20, Height: 20}, []types.Cell{c(5, 5)}, types.Right, c(6, 5))
	g.TogglePause()
	before := g.Snapshot()

	for i := 0; i < 5; i++ {
		if got := g.Tick(); got != OutcomeIdle {
			t.Fatalf("Tick while paused = %v, want idle", got)
		}
	}
	if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("paused tick mutated state:\n%+v\n%+v", before, after)
	}
}

func TestDirectionCanBeQueuedWhilePaused(t *testing.T) {
	g := newTestGame(t, types.Grid{Width: 20, Height: 20}, []types.Cell{c(5, 5)}, types.Right, c(0, 0))
	g.TogglePause()
	if !g.SetDirection(types.Down) {
		t.Fatal("SetDirection rejected while paused")
	}
	g.TogglePause()
	g.Tick()
	if head := g.Snapshot().Head(); head != c(5, 6) {
		t.Errorf("head = %v, want (5,6)", head)
	}
}

func TestGameOverIsTerminal(t *testing.T) {
	g := newTestGame(t, types.Grid{Width: 3, Height: 3}, []types.Cell{c(2, 1)}, types.Right, c(0, 0))
	g.Tick()
	before := g.Snapshot()
	if !before.GameOver {
		t.Fatal("expected game over")
	}

	if g.SetDirection(types.Up) {
		t.Error("SetDirection accepted after game over")
	}
	if g.TogglePause() {
		t.Error("TogglePause paused a finished game")
	}
	if got := g.Tick(); got != OutcomeIdle {
		t.Errorf("Tick after game over = %v, want idle", got)
	}
	if after := g.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Error("state changed after game over")
	}
}

// sweepPath visits every cell of grid row by row, alternating direction.
func sweepPath(grid types.Grid) []types.Cell {
	path := make([]types.Cell, 0, grid.Area())
	for y := 0; y < grid.Height; y++ {
		for i := 0; i < grid.Width; i++ {
			x := i
			if y%2 == 1 {
				x = grid.Width - 1 - i
			}
			path = append(path, c(x, y))
		}
	}
	return path
}

// headingTo returns the direction that steps from a to the adjacent cell b.
func headingTo(a, b types.Cell) types.Direction {
	for _, d := range []types.Direction{types.Up, types.Right, types.Down, types.Left} {
		if a.Step(d) == b {
			return d
		}
	}
	return types.None
}

func TestLengthAndAdjacencyInvariants(t *testing.T) {
	grid := types.Grid{Width: 12, Height: 12}
	path := sweepPath(grid)

	// Food sits every third cell along the sweep, always ahead of the head.
	var foods []types.Cell
	for i := 3; i <= 30; i += 3 {
		foods = append(foods, path[i])
	}
	g, err := New(Options{
		Grid:      grid,
		Start:     path[0],
		Direction: types.Right,
		Generator: manager.NewSequenceGenerator(foods...),
		Policy:    manager.AvoidSnake,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ate, maxLen, ticks := 0, 1, 0
	for i := 0; i < 2*grid.Area(); i++ {
		before := g.Snapshot()
		if before.GameOver {
			break
		}
		if i+1 < len(path) {
			if !g.SetDirection(headingTo(path[i], path[i+1])) && before.Direction != headingTo(path[i], path[i+1]) {
				t.Fatalf("tick %d: turn toward %v rejected", i, path[i+1])
			}
		}

		outcome := g.Tick()
		ticks++
		after := g.Snapshot()
		switch outcome {
		case OutcomeMoved:
			if len(after.Snake) != len(before.Snake) {
				t.Fatalf("tick %d: length %d -> %d without eating", i, len(before.Snake), len(after.Snake))
			}
		case OutcomeAte:
			ate++
			if len(after.Snake) != len(before.Snake)+1 {
				t.Fatalf("tick %d: length %d -> %d after eating", i, len(before.Snake), len(after.Snake))
			}
			if after.Score != before.Score+1 {
				t.Fatalf("tick %d: score %d -> %d after eating", i, before.Score, after.Score)
			}
		case OutcomeCollided:
			if !reflect.DeepEqual(after.Snake, before.Snake) {
				t.Fatalf("tick %d: snake mutated on collision", i)
			}
			continue
		}
		if after.Head() != path[i+1] {
			t.Fatalf("tick %d: head at %v, want %v", i, after.Head(), path[i+1])
		}
		if len(after.Snake) > maxLen {
			maxLen = len(after.Snake)
		}
		for j := 1; j < len(after.Snake); j++ {
			if d := after.Snake[j-1].Manhattan(after.Snake[j]); d != 1 {
				t.Fatalf("tick %d: segments %d and %d are %d apart", i, j-1, j, d)
			}
		}
	}

	final := g.Snapshot()
	if !final.GameOver || final.Cause != types.WallCollision {
		t.Errorf("sweep ended with GameOver=%t cause=%v, want a wall hit past the last cell", final.GameOver, final.Cause)
	}
	if ticks != len(path) {
		t.Errorf("ran %d ticks, want %d (every cell then the wall)", ticks, len(path))
	}
	if ate != len(foods) || maxLen != 1+len(foods) {
		t.Errorf("ate %d, max length %d; want %d and %d", ate, maxLen, len(foods), 1+len(foods))
	}
}

func TestRecord(t *testing.T) {
	g := newTestGame(t, types.Grid{Width: 3, Height: 3}, []types.Cell{c(1, 1)}, types.Right, c(2, 1), c(0, 0))
	g.Tick() // eats at (2,1)
	g.Tick() // hits the right wall

	r := g.Record()
	if r.Score != 1 || r.Length != 2 || r.Cause != types.WallCollision {
		t.Errorf("Record = %+v", r)
	}
	if r.ID != g.ID().String() {
		t.Errorf("Record ID = %q", r.ID)
	}
	if r.EndTime.Before(r.StartTime) {
		t.Error("end time before start time")
	}
}
