package game_test

import (
	"testing"

	"flooded-island-server/internal/board"
	"flooded-island-server/internal/game"

	"github.com/stretchr/testify/assert"
)

func TestMoverSurvived(t *testing.T) {
	assert.False(t, game.MoverSurvived(1))
	assert.False(t, game.MoverSurvived(game.MaxDays-1))
	assert.True(t, game.MoverSurvived(game.MaxDays))
}

func TestFlooderTrapped(t *testing.T) {
	assert.False(t, game.FlooderTrapped(game.NewRoom("X", now)), "unconfigured room is never trapped")

	r := activeRoom(t, 3, 3, 2)
	assert.False(t, game.FlooderTrapped(r))

	for _, n := range board.Neighbors8(*r.Mover, 3, 3) {
		r.Grid.Set(n, board.Flooded)
	}
	assert.True(t, game.FlooderTrapped(r))
}

func TestComputeStats(t *testing.T) {
	r := activeRoom(t, 4, 5, 2)
	r.Turn = 12
	r.Grid.Set(pos(3, 4), board.Flooded)
	r.Grid.Set(pos(2, 2), board.Flooded)

	assert.Equal(t, game.Stats{
		DaysSurvived:  12,
		FieldsFlooded: 2,
		FieldsDry:     18,
		TotalFields:   20,
	}, game.ComputeStats(r))
}
