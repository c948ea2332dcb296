package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gridsnake/game/manager"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = 100 * time.Millisecond

// inputBuffer is how many inputs may queue between two ticks before new
// ones are dropped.
const inputBuffer = 16

var (
	ErrNilFactory      = errors.New("game factory is required")
	ErrInvalidInterval = errors.New("tick interval must be positive")
	ErrLoopStarted     = errors.New("loop has already been started")
)

// Factory builds a fresh game. The loop calls it at start and on restart.
type Factory func() (*Game, error)

// LoopConfig wires a Loop.
type LoopConfig struct {
	Factory    Factory
	Interval   time.Duration
	Logger     Logger
	Scoreboard *manager.Scoreboard
}

// Loop owns the clock that drives a Game. Ticks and inputs are handled by
// the single goroutine running Run, so the game never sees two mutations at
// once. Snapshots are published on Frames after every visible change.
type Loop struct {
	factory    Factory
	interval   time.Duration
	logger     Logger
	scoreboard *manager.Scoreboard
	inputs     chan Input
	frames     chan Snapshot

	mu      sync.Mutex
	started bool
	current *Game
}

func NewLoop(c LoopConfig) (*Loop, error) {
	if c.Factory == nil {
		return nil, ErrNilFactory
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, c.Interval)
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Scoreboard == nil {
		c.Scoreboard = manager.NewScoreboard()
	}
	return &Loop{
		factory:    c.Factory,
		interval:   c.Interval,
		logger:     c.Logger,
		scoreboard: c.Scoreboard,
		inputs:     make(chan Input, inputBuffer),
		frames:     make(chan Snapshot, 1),
	}, nil
}

// Send queues an input for the loop. It never blocks; when the queue is
// full the input is dropped.
func (l *Loop) Send(in Input) {
	select {
	case l.inputs <- in:
	default:
		l.logger.Warning(fmt.Sprintf("input queue full, dropping %s", in))
	}
}

// Frames delivers snapshots. Only the newest unread snapshot is kept. The
// channel is closed when Run returns.
func (l *Loop) Frames() <-chan Snapshot {
	return l.frames
}

func (l *Loop) Scoreboard() *manager.Scoreboard {
	return l.scoreboard
}

// Current returns the game being driven, or nil before Run has started one.
func (l *Loop) Current() *Game {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Run drives games until ctx is cancelled. The ticker is halted while a game
// is over and restarted by InputRestart. A Loop can only be run once.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return ErrLoopStarted
	}
	l.started = true
	l.mu.Unlock()

	defer close(l.frames)

	g, err := l.newGame()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	tickC := ticker.C

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped")
			return nil

		case <-tickC:
			switch g.Tick() {
			case OutcomeIdle:
				continue
			case OutcomeCollided:
				ticker.Stop()
				tickC = nil
				l.finish(g)
			}
			l.publish(g.Snapshot())

		case in := <-l.inputs:
			if in == InputRestart {
				if !g.Snapshot().GameOver {
					l.finish(g)
				}
				next, err := l.newGame()
				if err != nil {
					l.logger.Error(fmt.Sprintf("restarting game: %v", err))
					continue
				}
				g = next
				ticker.Reset(l.interval)
				tickC = ticker.C
				continue
			}
			if l.apply(g, in) {
				l.publish(g.Snapshot())
			}
		}
	}
}

// apply hands a non-restart input to g and reports whether anything changed.
func (l *Loop) apply(g *Game, in Input) bool {
	switch in {
	case InputPause:
		if g.Snapshot().GameOver {
			return false
		}
		paused := g.TogglePause()
		l.logger.Info(fmt.Sprintf("game %s paused=%t", g.ID(), paused))
		return true
	case InputUp, InputDown, InputLeft, InputRight:
		return g.SetDirection(in.Direction())
	}
	return false
}

func (l *Loop) newGame() (*Game, error) {
	g, err := l.factory()
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}
	l.mu.Lock()
	l.current = g
	l.mu.Unlock()

	grid := g.Grid()
	l.logger.Info(fmt.Sprintf("started game %s on %dx%d grid", g.ID(), grid.Width, grid.Height))
	l.publish(g.Snapshot())
	return g, nil
}

func (l *Loop) finish(g *Game) {
	r := g.Record()
	l.scoreboard.Record(r)
	l.logger.Info(fmt.Sprintf("game %s over (%s): score %d, length %d, high score %d",
		r.ID, r.Cause, r.Score, r.Length, l.scoreboard.GetHighScore()))
}

// publish replaces any unread frame with s. Run is the only sender, so the
// second send cannot block.
func (l *Loop) publish(s Snapshot) {
	select {
	case l.frames <- s:
		return
	default:
	}
	select {
	case <-l.frames:
	default:
	}
	select {
	case l.frames <- s:
	default:
	}
}
