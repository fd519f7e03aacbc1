package game

import "flooded-island-server/internal/board"

type Stats struct {
	DaysSurvived  int `json:"daysSurvived"`
	FieldsFlooded int `json:"fieldsFlooded"`
	FieldsDry     int `json:"fieldsDry"`
	TotalFields   int `json:"totalFields"`
}

// MoverSurvived is checked right after a move, before the flooder acts on
// that day.
func MoverSurvived(turn int) bool {
	return turn >= MaxDays
}

// FlooderTrapped is checked only after a flood resolves.
func FlooderTrapped(r *Room) bool {
	if !r.Configured() || r.Mover == nil {
		return false
	}
	return board.IsTrapped(r.Grid, *r.Mover, r.Width, r.Height)
}

// ComputeStats summarises a finished room.
func ComputeStats(r *Room) Stats {
	flooded := r.Grid.Count(board.Flooded)
	total := r.Width * r.Height
	return Stats{
		DaysSurvived:  r.Turn,
		FieldsFlooded: flooded,
		FieldsDry:     total - flooded,
		TotalFields:   total,
	}
}
