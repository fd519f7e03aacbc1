package board_test

import (
	"testing"

	"flooded-island-server/internal/board"

	"github.com/stretchr/testify/assert"
)

func TestNewGrid_AllDry(t *testing.T) {
	assert := assert.New(t)
	g := board.NewGrid(4, 3)

	assert.Equal(4, g.Width())
	assert.Equal(3, g.Height())
	assert.Equal(12, g.Count(board.Dry))
	assert.Equal(0, g.Count(board.Flooded))
}

func TestGrid_Clone(t *testing.T) {
	g := board.NewGrid(3, 3)
	c := g.Clone()
	c.Set(board.Position{X: 1, Y: 1}, board.Flooded)

	assert.Equal(t, board.Dry, g.At(board.Position{X: 1, Y: 1}), "clone must not share rows")
	assert.Nil(t, board.Grid(nil).Clone())
}

func TestIsAdjacent8(t *testing.T) {
	center := board.Position{X: 5, Y: 5}

	for dx := -2; dx <= 2; dx++ {
		for dy := -2; dy <= 2; dy++ {
			other := board.Position{X: center.X + dx, Y: center.Y + dy}
			want := !(dx == 0 && dy == 0) && dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
			assert.Equal(t, want, board.IsAdjacent8(center, other), "delta (%d,%d)", dx, dy)
		}
	}
}

func TestIsInBounds(t *testing.T) {
	tests := []struct {
		p    board.Position
		want bool
	}{
		{board.Position{X: 0, Y: 0}, true},
		{board.Position{X: 4, Y: 2}, true},
		{board.Position{X: 5, Y: 0}, false},
		{board.Position{X: 0, Y: 3}, false},
		{board.Position{X: -1, Y: 0}, false},
		{board.Position{X: 0, Y: -1}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, board.IsInBounds(tt.p, 5, 3), "%+v", tt.p)
	}
}

func TestCardinalNeighbors(t *testing.T) {
	assert := assert.New(t)

	corner := board.CardinalNeighbors(board.Position{X: 0, Y: 0}, 3, 3)
	assert.ElementsMatch([]board.Position{{X: 1, Y: 0}, {X: 0, Y: 1}}, corner)

	edge := board.CardinalNeighbors(board.Position{X: 1, Y: 0}, 3, 3)
	assert.ElementsMatch([]board.Position{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 1}}, edge)

	middle := board.CardinalNeighbors(board.Position{X: 1, Y: 1}, 3, 3)
	assert.Len(middle, 4)
}

func TestNeighbors8(t *testing.T) {
	assert.Len(t, board.Neighbors8(board.Position{X: 0, Y: 0}, 3, 3), 3)
	assert.Len(t, board.Neighbors8(board.Position{X: 1, Y: 0}, 3, 3), 5)
	assert.Len(t, board.Neighbors8(board.Position{X: 1, Y: 1}, 3, 3), 8)
}
