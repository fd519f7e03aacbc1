package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flooded-island-server/internal/board"
	"flooded-island-server/internal/game"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Command
	}{
		{"select role", `{"type":"select_role","role":" Flooder "}`, SelectRoleCommand{Role: game.RoleFlooder}},
		{"configure", `{"type":"configure_grid","width":7,"height":5,"maxFloodCount":3}`, ConfigureGridCommand{Width: 7, Height: 5, MaxFloodCount: 3}},
		{"configure out of range", `{"type":"configure_grid","width":1,"height":99,"maxFloodCount":0}`, ConfigureGridCommand{Width: 1, Height: 99}},
		{"move", `{"type":"move","position":{"x":0,"y":2}}`, MoveCommand{Position: board.Position{X: 0, Y: 2}}},
		{"empty flood", `{"type":"flood","positions":[]}`, FloodCommand{Positions: []board.Position{}}},
		{"flood", `{"type":"flood","positions":[{"x":1,"y":1},{"x":-1,"y":4}]}`, FloodCommand{Positions: []board.Position{{X: 1, Y: 1}, {X: -1, Y: 4}}}},
		{"ping", `{"type":"ping","extra":true}`, PingCommand{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeCommand([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestDecodeCommand_Errors(t *testing.T) {
	tests := []struct {
		raw  string
		code string
	}{
		{`{`, "INVALID_MESSAGE"},
		{`"move"`, "INVALID_MESSAGE"},
		{`{"type":""}`, "INVALID_MESSAGE"},
		{`{"type":"select_role","role":"spectator"}`, "INVALID_MESSAGE"},
		{`{"type":"configure_grid","width":"5","height":5,"maxFloodCount":2}`, "INVALID_MESSAGE"},
		{`{"type":"configure_grid","width":5,"height":5}`, "INVALID_MESSAGE"},
		{`{"type":"move"}`, "INVALID_MESSAGE"},
		{`{"type":"move","position":{"y":1}}`, "INVALID_MESSAGE"},
		{`{"type":"flood","positions":null}`, "INVALID_MESSAGE"},
		{`{"type":"flood","positions":[{"x":1}]}`, "INVALID_MESSAGE"},
		{`{"type":"flood","positions":{"x":1,"y":1}}`, "INVALID_MESSAGE"},
		{`{"type":"chat","text":"hi"}`, "NOT_IMPLEMENTED"},
	}
	for _, tt := range tests {
		_, err := DecodeCommand([]byte(tt.raw))
		gerr := game.AsError(err)
		assert.Equal(t, game.KindStructural, gerr.Kind, tt.raw)
		assert.Equal(t, tt.code, gerr.Code, tt.raw)
	}
}
