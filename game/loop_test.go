package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"gridsnake/game/manager"
	"gridsnake/game/types"
)

const frameTimeout = 2 * time.Second

// corridorFactory builds a 5x1 game that eats twice and then hits the wall.
func corridorFactory() (*Game, error) {
	return New(Options{
		Grid:      types.Grid{Width: 5, Height: 1},
		Start:     c(0, 0),
		Generator: manager.NewSequenceGenerator(c(2, 0), c(4, 0)),
	})
}

func startLoop(t *testing.T, interval time.Duration, factory Factory) (*Loop, context.CancelFunc, <-chan error) {
	t.Helper()
	l, err := NewLoop(LoopConfig{Factory: factory, Interval: interval})
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(cancel)
	return l, cancel, done
}

// waitFrame reads frames until match accepts one.
func waitFrame(t *testing.T, l *Loop, match func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(frameTimeout)
	for {
		select {
		case s, ok := <-l.Frames():
			if !ok {
				t.Fatal("frames closed while waiting")
			}
			if match(s) {
				return s
			}
		case <-deadline:
			t.Fatal("timed out waiting for frame")
		}
	}
}

func TestNewLoopValidation(t *testing.T) {
	if _, err := NewLoop(LoopConfig{Interval: time.Second}); !errors.Is(err, ErrNilFactory) {
		t.Errorf("err = %v, want ErrNilFactory", err)
	}
	if _, err := NewLoop(LoopConfig{Factory: corridorFactory}); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("err = %v, want ErrInvalidInterval", err)
	}
}

func TestLoopRunsToGameOverAndRecords(t *testing.T) {
	l, _, _ := startLoop(t, time.Millisecond, corridorFactory)

	final := waitFrame(t, l, func(s Snapshot) bool { return s.GameOver })
	if final.Score != 2 {
		t.Errorf("final score = %d, want 2", final.Score)
	}
	if final.Cause != types.WallCollision {
		t.Errorf("cause = %v, want wall", final.Cause)
	}

	sb := l.Scoreboard()
	if sb.GamesPlayed() != 1 || sb.GetHighScore() != 2 {
		t.Errorf("scoreboard = %d games, high %d", sb.GamesPlayed(), sb.GetHighScore())
	}
}

func TestLoopRestart(t *testing.T) {
	l, _, _ := startLoop(t, time.Millisecond, corridorFactory)

	over := waitFrame(t, l, func(s Snapshot) bool { return s.GameOver })
	l.Send(InputRestart)
	// The new game runs down the same corridor and is recorded as well.
	second := waitFrame(t, l, func(s Snapshot) bool { return s.ID != over.ID && s.GameOver })
	if second.Score != 2 {
		t.Errorf("second game score = %d, want 2", second.Score)
	}
	if cur := l.Current(); cur == nil || cur.ID().String() != second.ID {
		t.Error("Current does not point at the restarted game")
	}
	if n := l.Scoreboard().GamesPlayed(); n != 2 {
		t.Errorf("GamesPlayed = %d, want 2", n)
	}
}

func TestLoopRestartMidGameRecordsRunningGame(t *testing.T) {
	factory := func() (*Game, error) {
		return New(Options{
			Grid:      types.Grid{Width: 20, Height: 20},
			Start:     c(5, 5),
			Generator: manager.NewSequenceGenerator(c(0, 0)),
		})
	}
	l, _, _ := startLoop(t, time.Hour, factory)
	first := waitFrame(t, l, func(Snapshot) bool { return true })
	if first.GameOver {
		t.Fatal("first game should still be running")
	}

	l.Send(InputRestart)
	second := waitFrame(t, l, func(s Snapshot) bool { return s.ID != first.ID })
	if second.GameOver || second.Score != 0 {
		t.Errorf("restarted game = %+v, want a fresh running game", second)
	}

	sb := l.Scoreboard()
	if n := sb.GamesPlayed(); n != 1 {
		t.Fatalf("GamesPlayed = %d, want 1 for the abandoned game", n)
	}
	last := sb.Summary().Last
	if last == nil || last.ID != first.ID || last.Cause != types.NoCollision {
		t.Errorf("last record = %+v, want the abandoned game with no collision", last)
	}
}

func TestLoopAppliesInputsBetweenTicks(t *testing.T) {
	factory := func() (*Game, error) {
		return New(Options{
			Grid:      types.Grid{Width: 20, Height: 20},
			Start:     c(5, 5),
			Generator: manager.NewSequenceGenerator(c(0, 0)),
		})
	}
	// A long interval keeps the clock out of the way.
	l, _, _ := startLoop(t, time.Hour, factory)
	waitFrame(t, l, func(Snapshot) bool { return true })

	l.Send(InputPause)
	waitFrame(t, l, func(s Snapshot) bool { return s.Paused })

	l.Send(InputUp)
	s := waitFrame(t, l, func(s Snapshot) bool { return s.Direction == types.Up })
	if !s.Paused {
		t.Error("direction change should not unpause")
	}

	l.Send(InputPause)
	waitFrame(t, l, func(s Snapshot) bool { return !s.Paused })
}

func TestLoopStopsOnCancel(t *testing.T) {
	l, cancel, done := startLoop(t, time.Hour, corridorFactory)
	waitFrame(t, l, func(Snapshot) bool { return true })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(frameTimeout):
		t.Fatal("Run did not return after cancel")
	}
	for range l.Frames() {
	}

	if err := l.Run(context.Background()); !errors.Is(err, ErrLoopStarted) {
		t.Errorf("second Run = %v, want ErrLoopStarted", err)
	}
}

func TestLoopFactoryError(t *testing.T) {
	boom := errors.New("boom")
	l, err := NewLoop(LoopConfig{
		Factory:  func() (*Game, error) { return nil, boom },
		Interval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	if err := l.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Run = %v, want wrapped boom", err)
	}
}

func TestParseInput(t *testing.T) {
	for _, in := range []Input{InputUp, InputDown, InputLeft, InputRight, InputPause, InputRestart} {
		got, err := ParseInput(in.String())
		if err != nil || got != in {
			t.Errorf("ParseInput(%q) = %v, %v", in.String(), got, err)
		}
	}
	if _, err := ParseInput("jump"); err == nil {
		t.Error("expected error for unknown input")
	}
	if InputPause.Direction() != types.None {
		t.Error("pause should not map to a direction")
	}
}
