package board

import "fmt"

const (
	MinFloodCount = 1
	MaxFloodCount = 3
)

// ValidationError describes why a move or flood is illegal.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

func invalid(code, format string, args ...any) error {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ValidateMove checks that the mover may step from `from` to `to`.
func ValidateMove(g Grid, from, to Position) error {
	if !g.Contains(to) {
		return invalid("OUT_OF_BOUNDS", "Target position (%d, %d) is outside the grid", to.X, to.Y)
	}
	if !IsAdjacent8(from, to) {
		return invalid("NOT_ADJACENT", "Target position (%d, %d) is not adjacent to (%d, %d)", to.X, to.Y, from.X, from.Y)
	}
	if g.At(to) != Dry {
		return invalid("CELL_FLOODED", "Target position (%d, %d) is flooded", to.X, to.Y)
	}
	return nil
}

func IsValidMove(g Grid, from, to Position) bool {
	return ValidateMove(g, from, to) == nil
}

// ValidateFlood checks a flooder submission of up to maxFloodCount cells.
// An empty submission is legal.
func ValidateFlood(g Grid, positions []Position, mover Position, maxFloodCount int) error {
	if len(positions) > maxFloodCount {
		return invalid("TOO_MANY_CELLS", "Can flood at most %d fields per turn, got %d", maxFloodCount, len(positions))
	}

	seen := make(map[Position]bool, len(positions))
	for _, p := range positions {
		if !g.Contains(p) {
			return invalid("OUT_OF_BOUNDS", "Position (%d, %d) is outside the grid", p.X, p.Y)
		}
		if g.At(p) != Dry {
			return invalid("CELL_FLOODED", "Position (%d, %d) is already flooded", p.X, p.Y)
		}
		if p == mover {
			return invalid("MOVER_CELL", "Cannot flood (%d, %d), the mover is standing there", p.X, p.Y)
		}
		if seen[p] {
			return invalid("DUPLICATE_CELL", "Position (%d, %d) listed more than once", p.X, p.Y)
		}
		seen[p] = true
	}
	return nil
}

func IsValidFlood(g Grid, positions []Position, mover Position, maxFloodCount int) bool {
	return ValidateFlood(g, positions, mover, maxFloodCount) == nil
}

// IsTrapped reports whether every in-bounds neighbour of pos is flooded.
// A position with no in-bounds neighbours is vacuously trapped; grids of
// MinSize or larger never produce one.
func IsTrapped(g Grid, pos Position, width, height int) bool {
	for _, n := range Neighbors8(pos, width, height) {
		if g.At(n) == Dry {
			return false
		}
	}
	return true
}

func ValidateDimensions(width, height int) error {
	if width < MinSize || width > MaxSize {
		return invalid("INVALID_DIMENSIONS", "Grid width must be between %d and %d, got %d", MinSize, MaxSize, width)
	}
	if height < MinSize || height > MaxSize {
		return invalid("INVALID_DIMENSIONS", "Grid height must be between %d and %d, got %d", MinSize, MaxSize, height)
	}
	return nil
}

func ValidateMaxFloodCount(n int) error {
	if n < MinFloodCount || n > MaxFloodCount {
		return invalid("INVALID_FLOOD_COUNT", "Max flood count must be between %d and %d, got %d", MinFloodCount, MaxFloodCount, n)
	}
	return nil
}
