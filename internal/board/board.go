package board

// Cell is the state of a single field on the grid.
type Cell string

const (
	Dry     Cell = "dry"
	Flooded Cell = "flooded"
)

const (
	MinSize = 3
	MaxSize = 10
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is stored row-major: Grid[y][x]. (0,0) is the top-left corner.
type Grid [][]Cell

// NewGrid returns a width x height grid with every cell DRY.
func NewGrid(width, height int) Grid {
	g := make(Grid, height)
	for y := range g {
		row := make([]Cell, width)
		for x := range row {
			row[x] = Dry
		}
		g[y] = row
	}
	return g
}

func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

func (g Grid) Height() int {
	return len(g)
}

// At returns the cell at p. Callers must check bounds first.
func (g Grid) At(p Position) Cell {
	return g[p.Y][p.X]
}

func (g Grid) Set(p Position, c Cell) {
	g[p.Y][p.X] = c
}

func (g Grid) Contains(p Position) bool {
	return IsInBounds(p, g.Width(), g.Height())
}

// Clone returns a deep copy; nil stays nil.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = append([]Cell(nil), row...)
	}
	return out
}

// Count returns how many cells are in state c.
func (g Grid) Count(c Cell) int {
	n := 0
	for _, row := range g {
		for _, cell := range row {
			if cell == c {
				n++
			}
		}
	}
	return n
}

var (
	cardinalDirs = [4][2]int{
		{0, -1}, // N
		{0, 1},  // S
		{1, 0},  // E
		{-1, 0}, // W
	}
	allDirs = [8][2]int{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
)

func IsInBounds(p Position, width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

// IsAdjacent8 reports whether b is one of the eight neighbours of a.
func IsAdjacent8(a, b Position) bool {
	if a == b {
		return false
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// CardinalNeighbors returns the N, S, E and W neighbours of p that lie on the grid.
func CardinalNeighbors(p Position, width, height int) []Position {
	return neighbors(p, width, height, cardinalDirs[:])
}

// Neighbors8 returns every in-bounds neighbour of p, diagonals included.
func Neighbors8(p Position, width, height int) []Position {
	return neighbors(p, width, height, allDirs[:])
}

func neighbors(p Position, width, height int, dirs [][2]int) []Position {
	out := make([]Position, 0, len(dirs))
	for _, d := range dirs {
		n := Position{X: p.X + d[0], Y: p.Y + d[1]}
		if IsInBounds(n, width, height) {
			out = append(out, n)
		}
	}
	return out
}
