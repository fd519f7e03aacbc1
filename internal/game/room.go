package game

import (
	"strings"
	"time"

	"flooded-island-server/internal/board"
)

type Role string

const (
	RoleNone    Role = ""
	RoleMover   Role = "mover"
	RoleFlooder Role = "flooder"
)

// ParseRole accepts role names in any case.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleMover:
		return RoleMover, true
	case RoleFlooder:
		return RoleFlooder, true
	}
	return RoleNone, false
}

func (r Role) Other() Role {
	switch r {
	case RoleMover:
		return RoleFlooder
	case RoleFlooder:
		return RoleMover
	}
	return RoleNone
}

type Status string

const (
	StatusWaiting     Status = "waiting"
	StatusConfiguring Status = "configuring"
	StatusActive      Status = "active"
	StatusEnded       Status = "ended"
)

const (
	// MaxDays is the day the mover has to complete to win.
	MaxDays = 365

	DefaultMaxFloodCount = 2
)

type Occupancy struct {
	Mover   bool `json:"mover"`
	Flooder bool `json:"flooder"`
}

func (o Occupancy) Has(r Role) bool {
	switch r {
	case RoleMover:
		return o.Mover
	case RoleFlooder:
		return o.Flooder
	}
	return false
}

func (o *Occupancy) Set(r Role, held bool) {
	switch r {
	case RoleMover:
		o.Mover = held
	case RoleFlooder:
		o.Flooder = held
	}
}

func (o Occupancy) Full() bool {
	return o.Mover && o.Flooder
}

// Room is the authoritative state of one match. Width, Height, Grid and Mover
// are either all unset (before configuration) or all set.
type Room struct {
	ID            string
	Width         int
	Height        int
	Grid          board.Grid
	Mover         *board.Position
	Turn          int
	ActiveRole    Role
	Players       Occupancy
	MaxFloodCount int
	Status        Status
	Winner        Role
	CreatedAt     time.Time
	EndedAt       *time.Time
}

func NewRoom(id string, now time.Time) *Room {
	return &Room{
		ID:            id,
		Turn:          1,
		ActiveRole:    RoleMover,
		MaxFloodCount: DefaultMaxFloodCount,
		Status:        StatusWaiting,
		CreatedAt:     now,
	}
}

func (r *Room) Configured() bool {
	return r.Grid != nil
}

// Clone returns a deep copy that shares no mutable state with r.
func (r *Room) Clone() *Room {
	c := *r
	c.Grid = r.Grid.Clone()
	if r.Mover != nil {
		p := *r.Mover
		c.Mover = &p
	}
	if r.EndedAt != nil {
		t := *r.EndedAt
		c.EndedAt = &t
	}
	return &c
}

// EndedBefore reports whether the game ended strictly before cutoff.
func (r *Room) EndedBefore(cutoff time.Time) bool {
	return r.Status == StatusEnded && r.EndedAt != nil && r.EndedAt.Before(cutoff)
}

func (r *Room) end(winner Role, now time.Time) {
	r.Status = StatusEnded
	r.Winner = winner
	r.EndedAt = &now
}

// RoomState is the wire snapshot of a room.
type RoomState struct {
	RoomID        string          `json:"roomId"`
	GridWidth     *int            `json:"gridWidth"`
	GridHeight    *int            `json:"gridHeight"`
	Grid          board.Grid      `json:"grid"`
	MoverPosition *board.Position `json:"moverPosition"`
	CurrentTurn   int             `json:"currentTurn"`
	CurrentRole   Role            `json:"currentRole"`
	Players       Occupancy       `json:"players"`
	GameStatus    Status          `json:"gameStatus"`
	Winner        *Role           `json:"winner"`
	MaxFloodCount int             `json:"maxFloodCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	EndedAt       *time.Time      `json:"endedAt"`
}

func (r *Room) Snapshot() RoomState {
	c := r.Clone()
	state := RoomState{
		RoomID:        c.ID,
		Grid:          c.Grid,
		MoverPosition: c.Mover,
		CurrentTurn:   c.Turn,
		CurrentRole:   c.ActiveRole,
		Players:       c.Players,
		GameStatus:    c.Status,
		MaxFloodCount: c.MaxFloodCount,
		CreatedAt:     c.CreatedAt,
		EndedAt:       c.EndedAt,
	}
	if c.Configured() {
		w, h := c.Width, c.Height
		state.GridWidth = &w
		state.GridHeight = &h
	}
	if c.Winner != RoleNone {
		winner := c.Winner
		state.Winner = &winner
	}
	return state
}
