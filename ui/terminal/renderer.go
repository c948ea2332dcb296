// Package terminal runs the game in a character terminal using tcell.
package terminal

import (
	"context"
	"errors"
	"fmt"

	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/ui"

	"github.com/gdamore/tcell/v2"
)

// Each grid cell is two columns wide so cells look square.
const cellColumns = 2

const (
	headRune = '▓'
	bodyRune = '█'
	foodRune = '●'
)

var (
	styleEmpty  = tcell.StyleDefault
	styleHead   = tcell.StyleDefault.Foreground(tcell.ColorLime)
	styleBody   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFood   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleAlert  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// Smallest board worth playing on.
const (
	minGridWidth  = 4
	minGridHeight = 2
)

var ErrScreenTooSmall = errors.New("terminal is too small")

// GridFor sizes a grid to fill screen, keeping the last row for the status line.
func GridFor(screen tcell.Screen) (types.Grid, error) {
	cols, rows := screen.Size()
	grid := types.Grid{Width: cols / cellColumns, Height: rows - 1}
	if grid.Width < minGridWidth || grid.Height < minGridHeight {
		return types.Grid{}, fmt.Errorf("%w: %dx%d characters, need at least %dx%d",
			ErrScreenTooSmall, cols, rows, minGridWidth*cellColumns, minGridHeight+1)
	}
	return grid, nil
}

// Renderer paints snapshots onto a tcell screen, touching only the cells
// that changed since the previous frame.
type Renderer struct {
	screen tcell.Screen
	board  *manager.Scoreboard
	prev   *game.Snapshot
}

func NewRenderer(screen tcell.Screen, board *manager.Scoreboard) *Renderer {
	return &Renderer{screen: screen, board: board}
}

// Invalidate forces the next Draw to repaint everything.
func (r *Renderer) Invalidate() {
	r.prev = nil
}

func (r *Renderer) Draw(s game.Snapshot) {
	d := game.Diff(r.prev, s)
	if d.Full {
		r.screen.Clear()
		for _, c := range s.Snake {
			r.setCell(c, bodyRune, styleBody)
		}
	} else {
		occupied := make(map[types.Cell]bool, len(s.Snake))
		for _, c := range s.Snake {
			occupied[c] = true
		}
		for _, c := range d.Removed {
			if c != s.Food {
				r.setCell(c, ' ', styleEmpty)
			}
		}
		for _, c := range d.Added {
			r.setCell(c, bodyRune, styleBody)
		}
		if d.HeadMoved && occupied[r.prev.Head()] {
			r.setCell(r.prev.Head(), bodyRune, styleBody)
		}
		if d.FoodMoved && !occupied[r.prev.Food] {
			r.setCell(r.prev.Food, ' ', styleEmpty)
		}
	}
	if len(s.Snake) > 0 {
		r.setCell(s.Head(), headRune, styleHead)
	}
	r.setCell(s.Food, foodRune, styleFood)
	r.drawStatus(s)
	r.screen.Show()
	r.prev = &s
}

func (r *Renderer) setCell(c types.Cell, ch rune, style tcell.Style) {
	x := c.X * cellColumns
	for i := 0; i < cellColumns; i++ {
		r.screen.SetContent(x+i, c.Y, ch, nil, style)
	}
}

func (r *Renderer) drawStatus(s game.Snapshot) {
	cols, rows := r.screen.Size()
	y := rows - 1
	for x := 0; x < cols; x++ {
		r.screen.SetContent(x, y, ' ', nil, styleEmpty)
	}

	high := s.Score
	if r.board != nil && r.board.GetHighScore() > high {
		high = r.board.GetHighScore()
	}
	x := drawText(r.screen, 0, y, styleStatus,
		fmt.Sprintf("Score: %d  Length: %d  High: %d", s.Score, len(s.Snake), high))

	switch {
	case s.GameOver:
		drawText(r.screen, x+2, y, styleAlert, fmt.Sprintf("GAME OVER (%s)  r: restart  q: quit", s.Cause))
	case s.Paused:
		drawText(r.screen, x+2, y, styleAlert, "PAUSED  space: resume")
	}
}

// drawText writes text from (x,y) and returns the column after it.
func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, ch := range text {
		screen.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}

// KeyToInput maps a key press to a game input. The second result reports
// whether the key asks to quit.
func KeyToInput(ev *tcell.EventKey) (game.Input, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return game.InputUp, false
	case tcell.KeyDown:
		return game.InputDown, false
	case tcell.KeyLeft:
		return game.InputLeft, false
	case tcell.KeyRight:
		return game.InputRight, false
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return game.InputNone, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			return game.InputUp, false
		case 's', 'S':
			return game.InputDown, false
		case 'a', 'A':
			return game.InputLeft, false
		case 'd', 'D':
			return game.InputRight, false
		case ' ', 'p', 'P':
			return game.InputPause, false
		case 'r', 'R':
			return game.InputRestart, false
		case 'q', 'Q':
			return game.InputNone, true
		}
	}
	return game.InputNone, false
}

// Run pumps key events into d and draws its frames until ctx is done, the
// player quits, or the frames channel closes. The caller owns screen and
// must call Fini after Run returns.
func Run(ctx context.Context, screen tcell.Screen, d ui.Driver) error {
	r := NewRenderer(screen, d.Scoreboard())
	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	frames := d.Frames()
	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-frames:
			if !ok {
				return nil
			}
			r.Draw(s)
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				in, quit := KeyToInput(ev)
				if quit {
					return nil
				}
				if in != game.InputNone {
					d.Send(in)
				}
			case *tcell.EventResize:
				screen.Sync()
				if r.prev != nil {
					last := *r.prev
					r.Invalidate()
					r.Draw(last)
				}
			}
		}
	}
}
