package manager

import (
	"gridsnake/game/entity"
	"gridsnake/game/types"
)

type CollisionManager struct {
	grid types.Grid
}

func NewCollisionManager(grid types.Grid) *CollisionManager {
	return &CollisionManager{
		grid: grid,
	}
}

// CheckCollision classifies what the snake would hit by moving its head to pos.
// Walls are checked before the body.
func (cm *CollisionManager) CheckCollision(pos types.Cell, snake *entity.Snake) types.CollisionType {
	if cm.isWallCollision(pos) {
		return types.WallCollision
	}
	if cm.isSelfCollision(pos, snake) {
		return types.SelfCollision
	}
	return types.NoCollision
}

// isWallCollision checks if a position collides with walls
func (cm *CollisionManager) isWallCollision(pos types.Cell) bool {
	return !cm.grid.Contains(pos)
}

// isSelfCollision tests pos against the body as it is before the tail moves.
// Stepping onto the current tail cell is a collision even though that cell
// would be vacated on a non-growing move.
func (cm *CollisionManager) isSelfCollision(pos types.Cell, snake *entity.Snake) bool {
	if snake == nil {
		return false
	}
	return snake.Occupies(pos)
}

// IsFoodCollision checks if a position collides with food
func (cm *CollisionManager) IsFoodCollision(pos types.Cell, food types.Cell) bool {
	return pos == food
}
