package game

import (
	"fmt"
	"strings"

	"gridsnake/game/types"
)

// Input is a player command delivered to a Loop.
type Input int

const (
	InputNone Input = iota
	InputUp
	InputDown
	InputLeft
	InputRight
	InputPause
	InputRestart
)

// Direction returns the heading an input asks for, or None for non-movement inputs.
func (in Input) Direction() types.Direction {
	switch in {
	case InputUp:
		return types.Up
	case InputDown:
		return types.Down
	case InputLeft:
		return types.Left
	case InputRight:
		return types.Right
	default:
		return types.None
	}
}

func (in Input) String() string {
	switch in {
	case InputUp:
		return "up"
	case InputDown:
		return "down"
	case InputLeft:
		return "left"
	case InputRight:
		return "right"
	case InputPause:
		return "pause"
	case InputRestart:
		return "restart"
	default:
		return "none"
	}
}

// ParseInput maps a command name such as "up" or "pause" to an Input.
func ParseInput(s string) (Input, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return InputUp, nil
	case "down":
		return InputDown, nil
	case "left":
		return InputLeft, nil
	case "right":
		return InputRight, nil
	case "pause":
		return InputPause, nil
	case "restart":
		return InputRestart, nil
	}
	return InputNone, fmt.Errorf("unknown input %q", s)
}
