// Package desktop draws the game in a raylib window.
package desktop

import (
	"context"
	"fmt"

	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/ui"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	borderPadding = 10 // Padding around game area
	targetFPS     = 60
)

// Keys polled every frame and the inputs they send.
var keyBindings = []struct {
	key   int32
	input game.Input
}{
	{rl.KeyUp, game.InputUp},
	{rl.KeyW, game.InputUp},
	{rl.KeyDown, game.InputDown},
	{rl.KeyS, game.InputDown},
	{rl.KeyLeft, game.InputLeft},
	{rl.KeyA, game.InputLeft},
	{rl.KeyRight, game.InputRight},
	{rl.KeyD, game.InputRight},
	{rl.KeySpace, game.InputPause},
	{rl.KeyP, game.InputPause},
	{rl.KeyR, game.InputRestart},
}

// Layout places a grid inside a window with a stats panel on the right.
type Layout struct {
	CellSize   int32
	OffsetX    int32
	OffsetY    int32
	GridWidth  int32
	GridHeight int32
	PanelX     int32
	PanelWidth int32
}

// NewLayout fits grid into a screenW x screenH window. The stats panel takes
// a seventh of the width.
func NewLayout(screenW, screenH int32, grid types.Grid) Layout {
	var l Layout
	l.PanelWidth = screenW / 7
	gameWidth := screenW - l.PanelWidth
	l.PanelX = gameWidth

	if grid.Width <= 0 || grid.Height <= 0 {
		return l
	}
	availableWidth := gameWidth - borderPadding*2
	availableHeight := screenH - borderPadding*2
	l.CellSize = min(availableWidth/int32(grid.Width), availableHeight/int32(grid.Height))
	if l.CellSize < 1 {
		l.CellSize = 1
	}
	l.GridWidth = l.CellSize * int32(grid.Width)
	l.GridHeight = l.CellSize * int32(grid.Height)
	l.OffsetX = borderPadding
	l.OffsetY = (screenH - l.GridHeight) / 2
	return l
}

// CellOrigin is the top-left pixel of c.
func (l Layout) CellOrigin(c types.Cell) (int32, int32) {
	return l.OffsetX + int32(c.X)*l.CellSize, l.OffsetY + int32(c.Y)*l.CellSize
}

type Renderer struct {
	board        *manager.Scoreboard
	screenWidth  int32
	screenHeight int32
}

func NewRenderer(board *manager.Scoreboard) *Renderer {
	r := &Renderer{board: board}
	r.UpdateDimensions()
	return r
}

func (r *Renderer) UpdateDimensions() {
	r.screenWidth = int32(rl.GetScreenWidth())
	r.screenHeight = int32(rl.GetScreenHeight())
}

// Draw paints one frame. A nil snapshot draws only the background.
func (r *Renderer) Draw(s *game.Snapshot) {
	r.UpdateDimensions()
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(rl.Black)

	fontSize := max(r.screenHeight/45, 10)
	if s == nil {
		rl.DrawText("Waiting for game...", borderPadding, borderPadding, fontSize, rl.Gray)
		return
	}

	l := NewLayout(r.screenWidth, r.screenHeight, types.Grid{Width: s.Width, Height: s.Height})
	rl.DrawRectangle(l.OffsetX-1, l.OffsetY-1, l.GridWidth+2, l.GridHeight+2, rl.DarkGray)

	fx, fy := l.CellOrigin(s.Food)
	rl.DrawRectangle(fx, fy, l.CellSize, l.CellSize, rl.Red)

	// Tail to head so the head ends up on top.
	for i := len(s.Snake) - 1; i >= 0; i-- {
		x, y := l.CellOrigin(s.Snake[i])
		color := rl.Green
		if i == 0 {
			color = rl.Lime
		}
		rl.DrawRectangle(x, y, l.CellSize, l.CellSize, color)
	}
	if len(s.Snake) > 0 {
		drawHeading(l, s.Head(), s.Direction)
	}

	r.drawOverlay(l, s, fontSize)
	r.drawStatsPanel(l, s, fontSize)
}

// drawHeading marks the head with a triangle pointing where the snake goes.
func drawHeading(l Layout, head types.Cell, d types.Direction) {
	x, y := l.CellOrigin(head)
	size := l.CellSize
	half := size / 2
	v := func(px, py int32) rl.Vector2 { return rl.Vector2{X: float32(px), Y: float32(py)} }

	switch d {
	case types.Right:
		rl.DrawTriangle(v(x+size, y+half), v(x+half, y), v(x+half, y+size), rl.Yellow)
	case types.Left:
		rl.DrawTriangle(v(x, y+half), v(x+half, y+size), v(x+half, y), rl.Yellow)
	case types.Down:
		rl.DrawTriangle(v(x+half, y+size), v(x+size, y+half), v(x, y+half), rl.Yellow)
	case types.Up:
		rl.DrawTriangle(v(x+half, y), v(x, y+half), v(x+size, y+half), rl.Yellow)
	}
}

func (r *Renderer) drawOverlay(l Layout, s *game.Snapshot, fontSize int32) {
	var text string
	switch {
	case s.GameOver:
		text = fmt.Sprintf("Game Over! (%s) Press R to restart", s.Cause)
	case s.Paused:
		text = "Paused"
	default:
		return
	}
	size := fontSize * 2
	width := rl.MeasureText(text, size)
	rl.DrawText(text,
		l.OffsetX+(l.GridWidth-width)/2,
		l.OffsetY+l.GridHeight/2-size/2,
		size, rl.White)
}

func (r *Renderer) drawStatsPanel(l Layout, s *game.Snapshot, fontSize int32) {
	lineHeight := fontSize + fontSize/2
	x := l.PanelX + 5
	y := int32(borderPadding)

	rl.DrawRectangle(l.PanelX, 0, l.PanelWidth, r.screenHeight, rl.DarkGray)
	line := func(text string, color rl.Color) {
		rl.DrawText(text, x, y, fontSize, color)
		y += lineHeight
	}

	line(fmt.Sprintf("Score: %d", s.Score), rl.White)
	line(fmt.Sprintf("Length: %d", len(s.Snake)), rl.White)
	if r.board == nil {
		return
	}
	sum := r.board.Summary()
	y += lineHeight / 2
	line(fmt.Sprintf("High: %d", max(sum.HighScore, s.Score)), rl.Green)
	line(fmt.Sprintf("Games: %d", sum.GamesPlayed), rl.White)
	line(fmt.Sprintf("Avg: %.1f", sum.AverageScore), rl.Green)
	line(fmt.Sprintf("Median: %.1f", sum.MedianScore), rl.Green)
	line(fmt.Sprintf("Avg time: %.1fs", sum.AverageDuration), rl.Purple)

	r.drawScoreGraph(l, sum.History, fontSize)
}

// drawScoreGraph plots recent scores in the bottom of the stats panel.
func (r *Renderer) drawScoreGraph(l Layout, history []manager.GameRecord, fontSize int32) {
	graphX := l.PanelX + 5
	graphWidth := l.PanelWidth - 10
	graphHeight := r.screenHeight / 5
	graphY := r.screenHeight - graphHeight - fontSize

	rl.DrawRectangleLines(graphX, graphY, graphWidth, graphHeight, rl.White)
	rl.DrawText("Scores", graphX, graphY-fontSize-5, fontSize, rl.White)
	if len(history) < 2 {
		return
	}

	maxScore := 1
	for _, g := range history {
		maxScore = max(maxScore, g.Score)
	}
	point := func(i int) (int32, int32) {
		px := graphX + int32(float32(graphWidth)*float32(i)/float32(len(history)-1))
		py := graphY + graphHeight - int32(float32(graphHeight)*float32(history[i].Score)/float32(maxScore))
		return px, py
	}
	for i := 1; i < len(history); i++ {
		x1, y1 := point(i - 1)
		x2, y2 := point(i)
		rl.DrawLine(x1, y1, x2, y2, rl.Green)
	}
}

// Run opens a window and drives it until the window is closed, Q is
// pressed, ctx is done or the frames channel closes. raylib requires this to
// be called from the main goroutine.
func Run(ctx context.Context, d ui.Driver, width, height int32) error {
	rl.InitWindow(width, height, "Snake")
	rl.SetWindowState(rl.FlagWindowResizable)
	defer rl.CloseWindow()
	rl.SetTargetFPS(targetFPS)

	r := NewRenderer(d.Scoreboard())
	frames := d.Frames()
	var latest *game.Snapshot

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil || rl.IsKeyPressed(rl.KeyQ) {
			return nil
		}
		for _, b := range keyBindings {
			if rl.IsKeyPressed(b.key) {
				d.Send(b.input)
			}
		}

	drain:
		for {
			select {
			case s, ok := <-frames:
				if !ok {
					return nil
				}
				latest = &s
			default:
				break drain
			}
		}

		r.Draw(latest)
	}
	return nil
}
