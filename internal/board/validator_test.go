package board_test

import (
	"errors"
	"testing"

	"flooded-island-server/internal/board"

	"github.com/stretchr/testify/assert"
)

func pos(x, y int) board.Position { return board.Position{X: x, Y: y} }

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var verr *board.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return verr.Code
}

// For every in-bounds pair, a move is valid iff the cells are 8-adjacent and
// the target is dry.
func TestIsValidMove_MatchesAdjacencyAndDryness(t *testing.T) {
	g := board.NewGrid(5, 5)
	g.Set(pos(2, 2), board.Flooded)
	g.Set(pos(0, 4), board.Flooded)

	for ax := 0; ax < 5; ax++ {
		for ay := 0; ay < 5; ay++ {
			for bx := 0; bx < 5; bx++ {
				for by := 0; by < 5; by++ {
					a, b := pos(ax, ay), pos(bx, by)
					want := board.IsAdjacent8(a, b) && g.At(b) == board.Dry
					assert.Equal(t, want, board.IsValidMove(g, a, b), "%v -> %v", a, b)
				}
			}
		}
	}
}

func TestValidateMove_Codes(t *testing.T) {
	g := board.NewGrid(3, 3)
	g.Set(pos(1, 1), board.Flooded)

	assert.Equal(t, "OUT_OF_BOUNDS", codeOf(t, board.ValidateMove(g, pos(0, 0), pos(-1, 0))))
	assert.Equal(t, "NOT_ADJACENT", codeOf(t, board.ValidateMove(g, pos(0, 0), pos(2, 2))))
	assert.Equal(t, "NOT_ADJACENT", codeOf(t, board.ValidateMove(g, pos(0, 0), pos(0, 0))))
	assert.Equal(t, "CELL_FLOODED", codeOf(t, board.ValidateMove(g, pos(0, 0), pos(1, 1))))
	assert.NoError(t, board.ValidateMove(g, pos(0, 0), pos(1, 0)))
}

func TestValidateFlood(t *testing.T) {
	g := board.NewGrid(4, 4)
	g.Set(pos(3, 3), board.Flooded)
	mover := pos(1, 1)

	tests := []struct {
		name      string
		positions []board.Position
		max       int
		code      string
	}{
		{name: "empty is allowed", positions: nil, max: 2},
		{name: "one cell", positions: []board.Position{pos(0, 0)}, max: 1},
		{name: "exactly max", positions: []board.Position{pos(0, 0), pos(2, 2), pos(3, 0)}, max: 3},
		{name: "over max", positions: []board.Position{pos(0, 0), pos(2, 2)}, max: 1, code: "TOO_MANY_CELLS"},
		{name: "out of bounds", positions: []board.Position{pos(4, 0)}, max: 2, code: "OUT_OF_BOUNDS"},
		{name: "negative", positions: []board.Position{pos(0, -1)}, max: 2, code: "OUT_OF_BOUNDS"},
		{name: "already flooded", positions: []board.Position{pos(3, 3)}, max: 2, code: "CELL_FLOODED"},
		{name: "mover cell", positions: []board.Position{pos(1, 1)}, max: 2, code: "MOVER_CELL"},
		{name: "duplicate", positions: []board.Position{pos(0, 0), pos(0, 0)}, max: 3, code: "DUPLICATE_CELL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := board.ValidateFlood(g, tt.positions, mover, tt.max)
			if tt.code == "" {
				assert.NoError(t, err)
				assert.True(t, board.IsValidFlood(g, tt.positions, mover, tt.max))
				return
			}
			assert.Equal(t, tt.code, codeOf(t, err))
			assert.False(t, board.IsValidFlood(g, tt.positions, mover, tt.max))
		})
	}
}

func TestIsTrapped(t *testing.T) {
	assert := assert.New(t)
	g := board.NewGrid(3, 3)
	center := pos(1, 1)

	assert.False(board.IsTrapped(g, center, 3, 3))

	for _, n := range board.Neighbors8(center, 3, 3) {
		g.Set(n, board.Flooded)
	}
	assert.True(board.IsTrapped(g, center, 3, 3))

	// One dry neighbour is enough to escape.
	g.Set(pos(2, 2), board.Dry)
	assert.False(board.IsTrapped(g, center, 3, 3))
}

func TestIsTrapped_Corner(t *testing.T) {
	g := board.NewGrid(3, 3)
	g.Set(pos(1, 0), board.Flooded)
	g.Set(pos(0, 1), board.Flooded)
	assert.False(t, board.IsTrapped(g, pos(0, 0), 3, 3))

	g.Set(pos(1, 1), board.Flooded)
	assert.True(t, board.IsTrapped(g, pos(0, 0), 3, 3))
}

func TestValidateDimensions(t *testing.T) {
	assert.NoError(t, board.ValidateDimensions(3, 10))
	assert.NoError(t, board.ValidateDimensions(10, 3))
	assert.Error(t, board.ValidateDimensions(2, 5))
	assert.Error(t, board.ValidateDimensions(5, 11))
	assert.Equal(t, "INVALID_DIMENSIONS", codeOf(t, board.ValidateDimensions(0, 0)))
}

func TestValidateMaxFloodCount(t *testing.T) {
	for n := 1; n <= 3; n++ {
		assert.NoError(t, board.ValidateMaxFloodCount(n))
	}
	assert.Equal(t, "INVALID_FLOOD_COUNT", codeOf(t, board.ValidateMaxFloodCount(0)))
	assert.Equal(t, "INVALID_FLOOD_COUNT", codeOf(t, board.ValidateMaxFloodCount(4)))
}
