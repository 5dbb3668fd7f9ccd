package grid

// Cell is an integer grid coordinate. X is the column, Y the row.
type Cell struct{ X, Y int }

// Distance returns the octile distance to o (orthogonal step 10, diagonal step 14)
func (c Cell) Distance(o Cell) int {
	dx := abs(c.X - o.X)
	dy := abs(c.Y - o.Y)
	if dx > dy {
		return 10*(dx-dy) + 14*dy
	}
	return 10*(dy-dx) + 14*dx
}

// Add returns c shifted by (dx, dy)
func (c Cell) Add(dx, dy int) Cell {
	return Cell{c.X + dx, c.Y + dy}
}

// Edge costs of the fixed-point octile metric
const (
	EdgeOrthogonal = 10
	EdgeDiagonal   = 14
)

// Offsets lists the 8 neighbor offsets in scan order: NW, N, NE, W, E, SW, S, SE
var Offsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Neighbor is an adjacent cell with the edge cost to reach it
type Neighbor struct {
	Cell
	Edge int
}

// Grid is a dense row-major 2D array
type Grid[T any] struct {
	Width, Height int
	Data          []T
}

// New creates a width×height grid filled with initial
func New[T any](initial T, width, height int) *Grid[T] {
	g := &Grid[T]{
		Width:  width,
		Height: height,
		Data:   make([]T, width*height),
	}
	g.Fill(initial)
	return g
}

// Index returns the flat index of c. c must be in bounds.
func (g *Grid[T]) Index(c Cell) int {
	return c.Y*g.Width + c.X
}

// CellAt is the inverse of Index
func (g *Grid[T]) CellAt(idx int) Cell {
	return Cell{idx % g.Width, idx / g.Width}
}

// InBounds reports whether c addresses a cell of the grid
func (g *Grid[T]) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

// Get returns the value at c. Callers clamp coordinates beforehand;
// an out-of-range cell panics.
func (g *Grid[T]) Get(c Cell) T {
	g.mustContain(c)
	return g.Data[c.Y*g.Width+c.X]
}

// Set stores v at c, panicking when c is outside the grid
func (g *Grid[T]) Set(c Cell, v T) {
	g.mustContain(c)
	g.Data[c.Y*g.Width+c.X] = v
}

// Fill overwrites every cell with v
func (g *Grid[T]) Fill(v T) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// Clone returns a deep copy
func (g *Grid[T]) Clone() *Grid[T] {
	data := make([]T, len(g.Data))
	copy(data, g.Data)
	return &Grid[T]{Width: g.Width, Height: g.Height, Data: data}
}

// NeighborsWithDistance returns the up to 8 neighbors of c with their edge
// cost, clipped at the grid edges (no wraparound)
func (g *Grid[T]) NeighborsWithDistance(c Cell) []Neighbor {
	return AppendNeighbors(nil, c, g.Width, g.Height)
}

// AppendNeighbors appends the neighbors of c inside a width×height area to dst.
// Hot loops pass a reused buffer to avoid allocating per cell.
func AppendNeighbors(dst []Neighbor, c Cell, width, height int) []Neighbor {
	for _, o := range Offsets {
		nx, ny := c.X+o[0], c.Y+o[1]
		if nx < 0 || ny < 0 || nx >= width || ny >= height {
			continue
		}
		edge := EdgeOrthogonal
		if o[0] != 0 && o[1] != 0 {
			edge = EdgeDiagonal
		}
		dst = append(dst, Neighbor{Cell: Cell{nx, ny}, Edge: edge})
	}
	return dst
}

// Grow returns the clamped 3×3 block centered on c, c included.
// Used by brush edits.
func (g *Grid[T]) Grow(c Cell) []Cell {
	cells := make([]Cell, 0, 9)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			n := Cell{c.X + dx, c.Y + dy}
			if g.InBounds(n) {
				cells = append(cells, n)
			}
		}
	}
	return cells
}

// Clamp moves c onto the nearest in-bounds cell
func (g *Grid[T]) Clamp(c Cell) Cell {
	c.X = max(0, min(g.Width-1, c.X))
	c.Y = max(0, min(g.Height-1, c.Y))
	return c
}

func (g *Grid[T]) mustContain(c Cell) {
	if !g.InBounds(c) {
		panic(outOfBounds{c, g.Width, g.Height})
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
