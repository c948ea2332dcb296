package entity

import (
	"gridsnake/game/types"
)

// Snake is the player's body as a plain coordinate list, head first.
// It holds no drawing state; front-ends rebuild visuals from snapshots.
type Snake struct {
	Body []types.Cell
}

func NewSnake(startPos types.Cell) *Snake {
	return &Snake{
		Body: []types.Cell{startPos},
	}
}

// NewSnakeWithBody builds a snake from head-first cells. The slice is copied.
func NewSnakeWithBody(body ...types.Cell) *Snake {
	b := make([]types.Cell, len(body))
	copy(b, body)
	return &Snake{Body: b}
}

// Move inserts newHead at the front of the body.
func (s *Snake) Move(newHead types.Cell) {
	s.Body = append(s.Body, types.Cell{})
	copy(s.Body[1:], s.Body)
	s.Body[0] = newHead
}

func (s *Snake) RemoveTail() {
	if len(s.Body) > 0 {
		s.Body = s.Body[:len(s.Body)-1]
	}
}

func (s *Snake) GetHead() types.Cell {
	return s.Body[0]
}

func (s *Snake) GetTail() types.Cell {
	return s.Body[len(s.Body)-1]
}

func (s *Snake) Len() int {
	return len(s.Body)
}

// Occupies reports whether any segment, tail included, sits on c.
func (s *Snake) Occupies(c types.Cell) bool {
	for _, part := range s.Body {
		if part == c {
			return true
		}
	}
	return false
}

// Cells returns a copy of the body safe to hand to renderers.
func (s *Snake) Cells() []types.Cell {
	body := make([]types.Cell, len(s.Body))
	copy(body, s.Body)
	return body
}

// Contiguous reports whether every consecutive pair of segments is adjacent.
func (s *Snake) Contiguous() bool {
	for i := 1; i < len(s.Body); i++ {
		if s.Body[i-1].Manhattan(s.Body[i]) != 1 {
			return false
		}
	}
	return true
}
