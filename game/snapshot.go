package game

import (
	"gridsnake/game/types"
)

// Snapshot is a read-only view of a game, safe to share across goroutines.
type Snapshot struct {
	ID        string              `json:"id"`
	Width     int                 `json:"width"`
	Height    int                 `json:"height"`
	Snake     []types.Cell        `json:"snake"`
	Food      types.Cell          `json:"food"`
	Direction types.Direction     `json:"direction"`
	Score     int                 `json:"score"`
	Paused    bool                `json:"paused"`
	GameOver  bool                `json:"gameOver"`
	Cause     types.CollisionType `json:"cause"`
	Tick      uint64              `json:"tick"`
}

// Head returns the first segment. The zero Cell is returned for an empty snapshot.
func (s Snapshot) Head() types.Cell {
	if len(s.Snake) == 0 {
		return types.Cell{}
	}
	return s.Snake[0]
}

// Delta lists what a renderer has to repaint to get from one snapshot to the next.
type Delta struct {
	// Full is set when the renderer should clear and draw everything.
	Full    bool
	Added   []types.Cell
	Removed []types.Cell
	// FoodMoved is set when the old food cell must be retired.
	FoodMoved bool
	// HeadMoved is set when the head segment changed; the old head should be
	// redrawn as a body segment.
	HeadMoved bool
}

// Diff compares two snapshots cell by cell. A nil prev, or one from a
// different game or grid, produces a full repaint.
func Diff(prev *Snapshot, next Snapshot) Delta {
	if prev == nil || prev.ID != next.ID || prev.Width != next.Width || prev.Height != next.Height {
		return Delta{Full: true, Added: append([]types.Cell(nil), next.Snake...), FoodMoved: true, HeadMoved: true}
	}

	before := make(map[types.Cell]struct{}, len(prev.Snake))
	for _, c := range prev.Snake {
		before[c] = struct{}{}
	}
	after := make(map[types.Cell]struct{}, len(next.Snake))
	for _, c := range next.Snake {
		after[c] = struct{}{}
	}

	var d Delta
	for _, c := range next.Snake {
		if _, ok := before[c]; !ok {
			d.Added = append(d.Added, c)
		}
	}
	for _, c := range prev.Snake {
		if _, ok := after[c]; !ok {
			d.Removed = append(d.Removed, c)
		}
	}
	d.FoodMoved = prev.Food != next.Food
	d.HeadMoved = prev.Head() != next.Head()
	return d
}
