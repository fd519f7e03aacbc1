package game

import (
	"time"

	"flooded-island-server/internal/board"
)

// Transitions below mutate the room they are given and leave it untouched
// when they return an error. Checks run in the same order everywhere: who is
// asking, then room status, then whose turn it is, then the board rules.

func requireRole(sender, want Role, action string) error {
	if sender == RoleNone {
		return Unauthorized("NO_ROLE", "Select a role before you %s", action)
	}
	if sender != want {
		return Unauthorized("WRONG_ROLE", "Only the %s can %s", want, action)
	}
	return nil
}

func requireActive(r *Room) error {
	switch r.Status {
	case StatusActive:
		return nil
	case StatusEnded:
		return InvalidState("GAME_ENDED", "Game has already ended")
	default:
		return InvalidState("GAME_NOT_ACTIVE", "Game is not active (status: %s)", r.Status)
	}
}

func requireTurn(r *Room, sender Role) error {
	if r.ActiveRole != sender {
		return Unauthorized("NOT_YOUR_TURN", "It is the %s's turn", r.ActiveRole)
	}
	return nil
}

// SelectRole binds want to a connection that currently holds held (RoleNone
// for a fresh connection). reconnect is true when the role was reclaimed in
// a room that had already left WAITING.
func SelectRole(r *Room, held, want Role) (reconnect bool, err error) {
	if held == want {
		return false, Unauthorized("ROLE_ALREADY_HELD", "You are already the %s", want)
	}
	if held != RoleNone && r.Status != StatusWaiting {
		return false, Unauthorized("ROLE_LOCKED", "Roles can only be switched before the game starts")
	}
	if r.Status == StatusEnded {
		return false, InvalidState("GAME_ENDED", "Game has already ended")
	}
	if r.Players.Has(want) {
		return false, RuleViolation("ROLE_TAKEN", "Role %s is already taken", want)
	}

	if held != RoleNone {
		r.Players.Set(held, false)
	}
	r.Players.Set(want, true)

	switch r.Status {
	case StatusWaiting:
		if r.Players.Full() {
			r.Status = StatusConfiguring
		}
		return false, nil
	default:
		return true, nil
	}
}

// Configure sets up the board and starts the game.
func Configure(r *Room, sender Role, width, height, maxFloodCount int) error {
	if err := requireRole(sender, RoleMover, "configure the grid"); err != nil {
		return err
	}
	if r.Status != StatusConfiguring {
		if r.Status == StatusEnded {
			return InvalidState("GAME_ENDED", "Game has already ended")
		}
		return InvalidState("INVALID_STATE", "Grid can only be configured while configuring (status: %s)", r.Status)
	}
	if err := board.ValidateDimensions(width, height); err != nil {
		return AsError(err)
	}
	if err := board.ValidateMaxFloodCount(maxFloodCount); err != nil {
		return AsError(err)
	}

	r.Width = width
	r.Height = height
	r.Grid = board.NewGrid(width, height)
	r.Mover = &board.Position{X: 0, Y: 0}
	r.MaxFloodCount = maxFloodCount
	r.Turn = 1
	r.ActiveRole = RoleMover
	r.Status = StatusActive
	return nil
}

// Move steps the mover to target and dries the cardinal neighbours of the
// new cell. ended reports whether the mover just completed the final day.
func Move(r *Room, sender Role, target board.Position, now time.Time) (ended bool, err error) {
	if err := requireRole(sender, RoleMover, "move"); err != nil {
		return false, err
	}
	if err := requireActive(r); err != nil {
		return false, err
	}
	if err := requireTurn(r, sender); err != nil {
		return false, err
	}
	if err := board.ValidateMove(r.Grid, *r.Mover, target); err != nil {
		return false, AsError(err)
	}

	r.Mover = &target
	for _, n := range board.CardinalNeighbors(target, r.Width, r.Height) {
		r.Grid.Set(n, board.Dry)
	}

	if MoverSurvived(r.Turn) {
		r.end(RoleMover, now)
		return true, nil
	}
	r.ActiveRole = RoleFlooder
	return false, nil
}

// Flood floods the given cells. A flood that leaves the mover with no dry
// neighbour ends the game on the current day.
func Flood(r *Room, sender Role, positions []board.Position, now time.Time) (ended bool, err error) {
	if err := requireRole(sender, RoleFlooder, "flood"); err != nil {
		return false, err
	}
	if err := requireActive(r); err != nil {
		return false, err
	}
	if err := requireTurn(r, sender); err != nil {
		return false, err
	}
	if err := board.ValidateFlood(r.Grid, positions, *r.Mover, r.MaxFloodCount); err != nil {
		return false, AsError(err)
	}

	for _, p := range positions {
		r.Grid.Set(p, board.Flooded)
	}

	if FlooderTrapped(r) {
		r.end(RoleFlooder, now)
		return true, nil
	}
	r.Turn++
	r.ActiveRole = RoleMover
	return false, nil
}

// Release marks role as vacant. Status is left alone so the role can be
// reclaimed.
func Release(r *Room, role Role) {
	r.Players.Set(role, false)
}
