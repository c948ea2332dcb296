// Package ui holds what the front-ends share.
package ui

import (
	"gridsnake/game"
	"gridsnake/game/manager"
)

// Driver is the part of a game.Loop a front-end talks to.
type Driver interface {
	Send(game.Input)
	Frames() <-chan game.Snapshot
	Scoreboard() *manager.Scoreboard
}

type tapped struct {
	Driver
	frames chan game.Snapshot
}

// Tap returns a Driver whose frames are handed to observe before the
// front-end sees them. The returned frames channel keeps only the newest
// snapshot and closes when d's does.
func Tap(d Driver, observe func(game.Snapshot)) Driver {
	t := &tapped{Driver: d, frames: make(chan game.Snapshot, 1)}
	go t.forward(observe)
	return t
}

func (t *tapped) Frames() <-chan game.Snapshot {
	return t.frames
}

func (t *tapped) forward(observe func(game.Snapshot)) {
	defer close(t.frames)
	for s := range t.Driver.Frames() {
		observe(s)
		select {
		case t.frames <- s:
			continue
		default:
		}
		select {
		case <-t.frames:
		default:
		}
		t.frames <- s
	}
}
