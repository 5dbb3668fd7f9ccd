package pathfind

import (
	"fmt"
	"slices"
	"sort"

	"github.com/1siamBot/tileflow/engine/grid"
)

// SearchState is the phase of an incremental search
type SearchState uint8

const (
	SearchInitial SearchState = iota
	SearchExpanding
	SearchDone
	SearchUnreachable
)

func (s SearchState) String() string {
	switch s {
	case SearchInitial:
		return "initial"
	case SearchExpanding:
		return "expanding"
	case SearchDone:
		return "done"
	case SearchUnreachable:
		return "unreachable"
	}
	return fmt.Sprintf("SearchState(%d)", uint8(s))
}

// Terminal reports whether no further step changes the search
func (s SearchState) Terminal() bool {
	return s == SearchDone || s == SearchUnreachable
}

type nodeState uint8

const (
	nodeUnknown nodeState = iota
	nodeOpen
	nodeClosed
)

// searchNode is the single per-cell record of the search arena
type searchNode struct {
	g, h   int
	parent int32 // flat index of the predecessor, -1 at the start cell
	state  nodeState
}

// Search is a grid-wide A* advanced one expansion per Step.
// It owns a snapshot of the cost grid taken at creation.
type Search struct {
	from, to grid.Cell
	cost     *grid.Grid[uint8]
	weight   int
	walls    bool

	state SearchState
	nodes []searchNode
	// open holds flat indices sorted by descending f; the next node to
	// expand is the last element. Equal f pops in insertion order.
	open     []int32
	path     []grid.Cell
	expanded int
	buf      []grid.Neighbor
}

// NewSearch prepares a search from one cell to another over a snapshot of cost
func NewSearch(from, to grid.Cell, cost *grid.Grid[uint8], opts Options) (*Search, error) {
	if !cost.InBounds(from) || !cost.InBounds(to) {
		return nil, fmt.Errorf("%w: from %v to %v in %dx%d", ErrOutOfBounds, from, to, cost.Width, cost.Height)
	}
	return newSearch(from, to, cost.Clone(), opts), nil
}

// newSearch takes ownership of cost without copying it
func newSearch(from, to grid.Cell, cost *grid.Grid[uint8], opts Options) *Search {
	weight := opts.HeuristicWeight
	if weight <= 0 {
		weight = 1
	}
	return &Search{
		from:   from,
		to:     to,
		cost:   cost,
		weight: weight,
		walls:  opts.WallsBlock,
		state:  SearchInitial,
	}
}

// Step performs one unit of work: initialisation on the first call, then one
// node expansion per call. Terminal states are returned unchanged.
func (s *Search) Step() SearchState {
	switch s.state {
	case SearchInitial:
		s.begin()
	case SearchExpanding:
		s.expand()
	}
	return s.state
}

// Run steps until the search terminates or maxSteps is reached (maxSteps <= 0
// means no limit). It returns the number of steps taken.
func (s *Search) Run(maxSteps int) int {
	n := 0
	for !s.state.Terminal() && (maxSteps <= 0 || n < maxSteps) {
		s.Step()
		n++
	}
	return n
}

func (s *Search) begin() {
	s.nodes = make([]searchNode, len(s.cost.Data))
	for i := range s.nodes {
		s.nodes[i].parent = -1
	}
	s.open = make([]int32, 0, s.from.Distance(s.to)/5+8)

	start := s.cost.Index(s.from)
	s.nodes[start] = searchNode{g: 0, h: s.from.Distance(s.to), parent: -1, state: nodeOpen}
	s.pushOpen(int32(start))
	s.state = SearchExpanding
}

func (s *Search) expand() {
	if len(s.open) == 0 {
		s.state = SearchUnreachable
		return
	}

	idx := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]
	cur := &s.nodes[idx]
	cur.state = nodeClosed
	s.expanded++

	cell := s.cost.CellAt(int(idx))
	if cell == s.to {
		s.path = s.reconstruct(idx)
		s.state = SearchDone
		return
	}

	s.buf = grid.AppendNeighbors(s.buf[:0], cell, s.cost.Width, s.cost.Height)
	for _, nb := range s.buf {
		nIdx := int32(s.cost.Index(nb.Cell))
		next := &s.nodes[nIdx]
		if next.state == nodeClosed {
			continue
		}

		step, ok := s.stepCost(s.cost.Data[nIdx], nb.Edge)
		if !ok {
			continue
		}
		g := cur.g + step

		switch next.state {
		case nodeOpen:
			// h is fixed per cell, so a lower g is a lower f
			if g >= next.g {
				continue
			}
			s.removeOpen(nIdx)
		case nodeUnknown:
			next.h = nb.Cell.Distance(s.to)
		}
		next.g = g
		next.parent = idx
		next.state = nodeOpen
		s.pushOpen(nIdx)
	}

	if len(s.open) == 0 {
		s.state = SearchUnreachable
	}
}

func (s *Search) stepCost(cellCost uint8, edge int) (int, bool) {
	if cellCost == CostWall {
		if s.walls {
			return 0, false
		}
		return edge * wallWeight, true
	}
	return edge * int(cellCost), true
}

func (s *Search) f(idx int32) int {
	n := &s.nodes[idx]
	return n.g + s.weight*n.h
}

// pushOpen inserts idx before every entry of equal f so that older entries
// are popped first
func (s *Search) pushOpen(idx int32) {
	f := s.f(idx)
	pos := sort.Search(len(s.open), func(i int) bool { return s.f(s.open[i]) <= f })
	s.open = slices.Insert(s.open, pos, idx)
}

// removeOpen drops idx from the open list; called before its g changes
func (s *Search) removeOpen(idx int32) {
	f := s.f(idx)
	pos := sort.Search(len(s.open), func(i int) bool { return s.f(s.open[i]) <= f })
	for i := pos; i < len(s.open) && s.f(s.open[i]) == f; i++ {
		if s.open[i] == idx {
			s.open = slices.Delete(s.open, i, i+1)
			return
		}
	}
}

func (s *Search) reconstruct(idx int32) []grid.Cell {
	var path []grid.Cell
	for i := idx; i >= 0; i = s.nodes[i].parent {
		path = append(path, s.cost.CellAt(int(i)))
	}
	slices.Reverse(path)
	return path
}

// State returns the current phase
func (s *Search) State() SearchState { return s.state }

// From returns the start cell
func (s *Search) From() grid.Cell { return s.from }

// To returns the target cell
func (s *Search) To() grid.Cell { return s.to }

// Path returns the start→target path once Done, nil otherwise
func (s *Search) Path() []grid.Cell { return s.path }

// CostGrid echoes the cost snapshot the search runs on. Callers must not modify it.
func (s *Search) CostGrid() *grid.Grid[uint8] { return s.cost }

// Expanded returns the number of nodes closed so far
func (s *Search) Expanded() int { return s.expanded }

// TotalCost returns the accumulated cost g at the target, or -1 before Done
func (s *Search) TotalCost() int {
	if s.state != SearchDone {
		return -1
	}
	return s.nodes[s.cost.Index(s.to)].g
}

// PathCosts returns g for every cell of the path
func (s *Search) PathCosts() []int {
	costs := make([]int, len(s.path))
	for i, c := range s.path {
		costs[i] = s.nodes[s.cost.Index(c)].g
	}
	return costs
}

// OpenCells lists the cells waiting for expansion, next one first
func (s *Search) OpenCells() []grid.Cell {
	cells := make([]grid.Cell, len(s.open))
	for i := range s.open {
		cells[i] = s.cost.CellAt(int(s.open[len(s.open)-1-i]))
	}
	return cells
}

// Closed reports whether c has been expanded
func (s *Search) Closed(c grid.Cell) bool {
	if s.nodes == nil {
		return false
	}
	return s.nodes[s.cost.Index(c)].state == nodeClosed
}

// FindPath runs a search to completion and returns its path
func FindPath(cost *grid.Grid[uint8], from, to grid.Cell, opts Options) ([]grid.Cell, error) {
	s, err := NewSearch(from, to, cost, opts)
	if err != nil {
		return nil, err
	}
	s.Run(0)
	if s.State() != SearchDone {
		return nil, fmt.Errorf("%w: %v to %v", ErrNoPath, from, to)
	}
	return s.Path(), nil
}

// SmoothPath keeps only the path cells an agent must turn at: each kept cell
// is the farthest one still reachable from the previous in a straight line
func SmoothPath(cost *grid.Grid[uint8], path []grid.Cell) []grid.Cell {
	if len(path) <= 2 {
		return path
	}
	out := []grid.Cell{path[0]}
	for from := 0; from < len(path)-1; {
		next := from + 1
		for i := len(path) - 1; i > next; i-- {
			if clearLine(cost, path[from], path[i]) {
				next = i
				break
			}
		}
		out = append(out, path[next])
		from = next
	}
	return out
}

// clearLine walks the Bresenham cells from a to b and reports whether none is
// a wall. A diagonal move also needs both cells it cuts past to be open.
func clearLine(cost *grid.Grid[uint8], a, b grid.Cell) bool {
	wall := func(x, y int) bool { return cost.Get(grid.Cell{X: x, Y: y}) == CostWall }
	dx, dy := abs(b.X-a.X), abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	rem := dx - dy
	x, y := a.X, a.Y
	for {
		if wall(x, y) {
			return false
		}
		if x == b.X && y == b.Y {
			return true
		}
		nx, ny := x, y
		e := 2 * rem
		if e > -dy {
			rem -= dy
			nx += sx
		}
		if e < dx {
			rem += dx
			ny += sy
		}
		if nx != x && ny != y && (wall(nx, y) || wall(x, ny)) {
			return false
		}
		x, y = nx, ny
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
