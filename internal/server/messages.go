package server

import (
	"encoding/json"

	"flooded-island-server/internal/board"
	"flooded-island-server/internal/game"
)

const (
	MsgSelectRole    = "select_role"
	MsgConfigureGrid = "configure_grid"
	MsgMove          = "move"
	MsgFlood         = "flood"
	MsgPing          = "ping"

	MsgRoomState          = "room_state"
	MsgGameUpdate         = "game_update"
	MsgGameOver           = "game_over"
	MsgError              = "error"
	MsgPlayerDisconnected = "player_disconnected"
	MsgPlayerReconnected  = "player_reconnected"
	MsgPong               = "pong"
)

// ClientMessage is the part every inbound frame shares.
type ClientMessage struct {
	Type string `json:"type"`
}

// Command is a decoded inbound message. The set of commands is closed.
type Command interface {
	Type() string
	command()
}

type SelectRoleCommand struct {
	Role game.Role
}

type ConfigureGridCommand struct {
	Width         int
	Height        int
	MaxFloodCount int
}

type MoveCommand struct {
	Position board.Position
}

type FloodCommand struct {
	Positions []board.Position
}

type PingCommand struct{}

func (SelectRoleCommand) Type() string    { return MsgSelectRole }
func (ConfigureGridCommand) Type() string { return MsgConfigureGrid }
func (MoveCommand) Type() string          { return MsgMove }
func (FloodCommand) Type() string         { return MsgFlood }
func (PingCommand) Type() string          { return MsgPing }

func (SelectRoleCommand) command()    {}
func (ConfigureGridCommand) command() {}
func (MoveCommand) command()          {}
func (FloodCommand) command()         {}
func (PingCommand) command()          {}

// Pointer fields let the decoder tell a missing field from a zero value.
type wirePosition struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

func (p *wirePosition) position() (board.Position, bool) {
	if p == nil || p.X == nil || p.Y == nil {
		return board.Position{}, false
	}
	return board.Position{X: *p.X, Y: *p.Y}, true
}

func invalidMessage(format string, args ...any) error {
	return game.Structural("INVALID_MESSAGE", format, args...)
}

// DecodeCommand parses one inbound frame. Schema problems are structural
// errors; value ranges are left to the game rules.
func DecodeCommand(data []byte) (Command, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, invalidMessage("Message must be a JSON object")
	}
	if msg.Type == "" {
		return nil, invalidMessage("Message is missing a type")
	}

	switch msg.Type {
	case MsgSelectRole:
		var p struct {
			Role *string `json:"role"`
		}
		if err := json.Unmarshal(data, &p); err != nil || p.Role == nil {
			return nil, invalidMessage("select_role requires a role")
		}
		role, ok := game.ParseRole(*p.Role)
		if !ok {
			return nil, invalidMessage("Unknown role %q", *p.Role)
		}
		return SelectRoleCommand{Role: role}, nil

	case MsgConfigureGrid:
		var p struct {
			Width         *int `json:"width"`
			Height        *int `json:"height"`
			MaxFloodCount *int `json:"maxFloodCount"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, invalidMessage("configure_grid fields must be integers")
		}
		if p.Width == nil || p.Height == nil || p.MaxFloodCount == nil {
			return nil, invalidMessage("configure_grid requires width, height and maxFloodCount")
		}
		return ConfigureGridCommand{Width: *p.Width, Height: *p.Height, MaxFloodCount: *p.MaxFloodCount}, nil

	case MsgMove:
		var p struct {
			Position *wirePosition `json:"position"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, invalidMessage("move position must be {x, y} integers")
		}
		target, ok := p.Position.position()
		if !ok {
			return nil, invalidMessage("move requires a position with x and y")
		}
		return MoveCommand{Position: target}, nil

	case MsgFlood:
		var p struct {
			Positions *[]*wirePosition `json:"positions"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, invalidMessage("flood positions must be a list of {x, y} integers")
		}
		if p.Positions == nil {
			return nil, invalidMessage("flood requires a positions list")
		}
		positions := make([]board.Position, 0, len(*p.Positions))
		for i, wp := range *p.Positions {
			target, ok := wp.position()
			if !ok {
				return nil, invalidMessage("flood position %d requires x and y", i)
			}
			positions = append(positions, target)
		}
		return FloodCommand{Positions: positions}, nil

	case MsgPing:
		return PingCommand{}, nil

	default:
		return nil, game.Structural("NOT_IMPLEMENTED", "Message type '%s' is not supported", msg.Type)
	}
}
