package server

import (
	"time"

	"flooded-island-server/internal/database"
	"flooded-island-server/internal/game"
)

// ============================================================================
// ERROR RESPONSES
// ============================================================================
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func newErrorMessage(err *game.Error) ErrorMessage {
	return ErrorMessage{Type: MsgError, Message: err.Message, Code: err.Code}
}

// ============================================================================
// ROOM STATE (room_state, game_update)
// ============================================================================
type RoomStateMessage struct {
	Type  string         `json:"type"`
	State game.RoomState `json:"state"`
}

func newRoomState(r *game.Room) RoomStateMessage {
	return RoomStateMessage{Type: MsgRoomState, State: r.Snapshot()}
}

func newGameUpdate(r *game.Room) RoomStateMessage {
	return RoomStateMessage{Type: MsgGameUpdate, State: r.Snapshot()}
}

// ============================================================================
// GAME OVER (game_over broadcast)
// ============================================================================
type GameOverMessage struct {
	Type   string     `json:"type"`
	Winner game.Role  `json:"winner"`
	Stats  game.Stats `json:"stats"`
}

func newGameOver(r *game.Room) GameOverMessage {
	return GameOverMessage{Type: MsgGameOver, Winner: r.Winner, Stats: game.ComputeStats(r)}
}

// ============================================================================
// PLAYER STATUS (player_disconnected, player_reconnected)
// ============================================================================
type PlayerStatusMessage struct {
	Type string    `json:"type"`
	Role game.Role `json:"role"`
}

// ============================================================================
// PONG
// ============================================================================
type PongMessage struct {
	Type string `json:"type"`
}

// ============================================================================
// HTTP API
// ============================================================================
type CreateRoomResponse struct {
	RoomID    string      `json:"roomId"`
	Status    game.Status `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

type HealthResponse struct {
	Status      string            `json:"status"`
	Rooms       int               `json:"rooms"`
	Connections int               `json:"connections"`
	Database    map[string]string `json:"database"`
}

type MatchesResponse struct {
	Matches []database.MatchResult `json:"matches"`
}

type HTTPError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
