package pathfind

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/tileflow/engine/grid"
)

func openGrid(w, h int) *grid.Grid[uint8] {
	return grid.New[uint8](1, w, h)
}

func wallColumn(g *grid.Grid[uint8], x int) {
	for y := 0; y < g.Height; y++ {
		g.Set(grid.Cell{X: x, Y: y}, CostWall)
	}
}

func TestSearchDiagonal(t *testing.T) {
	s, err := NewSearch(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 4, Y: 4}, openGrid(5, 5), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, SearchInitial, s.State())

	s.Run(0)
	require.Equal(t, SearchDone, s.State())
	assert.Equal(t, []grid.Cell{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}, {X: 4, Y: 4}}, s.Path())
	assert.Equal(t, 56, s.TotalCost())
	assert.Equal(t, []int{0, 14, 28, 42, 56}, s.PathCosts())
}

func TestSearchStartIsTarget(t *testing.T) {
	s, err := NewSearch(grid.Cell{X: 2, Y: 1}, grid.Cell{X: 2, Y: 1}, openGrid(4, 4), DefaultOptions())
	require.NoError(t, err)
	s.Run(0)
	require.Equal(t, SearchDone, s.State())
	assert.Equal(t, []grid.Cell{{X: 2, Y: 1}}, s.Path())
	assert.Equal(t, 0, s.TotalCost())
}

func TestSearchReachableEndpoints(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		w, h := 2+rng.Intn(20), 2+rng.Intn(20)
		cost := openGrid(w, h)
		for j := range cost.Data {
			cost.Data[j] = uint8(1 + rng.Intn(9))
		}
		from := grid.Cell{X: rng.Intn(w), Y: rng.Intn(h)}
		to := grid.Cell{X: rng.Intn(w), Y: rng.Intn(h)}

		s, err := NewSearch(from, to, cost, DefaultOptions())
		require.NoError(t, err)
		s.Run(0)
		require.Equal(t, SearchDone, s.State(), "from %v to %v", from, to)

		path := s.Path()
		assert.Equal(t, from, path[0])
		assert.Equal(t, to, path[len(path)-1])

		costs := s.PathCosts()
		for k := 1; k < len(costs); k++ {
			assert.GreaterOrEqual(t, costs[k], costs[k-1])
			d := path[k].Distance(path[k-1])
			assert.Contains(t, []int{10, 14}, d, "path cells must be adjacent")
		}
	}
}

func TestSearchWallUnreachable(t *testing.T) {
	cost := openGrid(9, 7)
	wallColumn(cost, 4)

	s, err := NewSearch(grid.Cell{X: 0, Y: 3}, grid.Cell{X: 8, Y: 3}, cost, DefaultOptions())
	require.NoError(t, err)
	steps := s.Run(10000)
	assert.Less(t, steps, 10000)
	assert.Equal(t, SearchUnreachable, s.State())
	assert.Nil(t, s.Path())
	assert.Equal(t, -1, s.TotalCost())

	// Terminal steps are idempotent
	assert.Equal(t, SearchUnreachable, s.Step())
	assert.Equal(t, SearchUnreachable, s.Step())
}

func TestSearchTraversableWalls(t *testing.T) {
	cost := openGrid(9, 7)
	wallColumn(cost, 4)
	opts := DefaultOptions()
	opts.WallsBlock = false

	s, err := NewSearch(grid.Cell{X: 0, Y: 3}, grid.Cell{X: 8, Y: 3}, cost, opts)
	require.NoError(t, err)
	s.Run(0)
	require.Equal(t, SearchDone, s.State())
	assert.Greater(t, s.TotalCost(), wallWeight)
}

func TestSearchGoesAroundWall(t *testing.T) {
	cost := openGrid(9, 7)
	wallColumn(cost, 4)
	cost.Set(grid.Cell{X: 4, Y: 6}, 1)

	path, err := FindPath(cost, grid.Cell{X: 0, Y: 0}, grid.Cell{X: 8, Y: 0}, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, path, grid.Cell{X: 4, Y: 6})
	for _, c := range path {
		assert.NotEqual(t, CostWall, cost.Get(c))
	}
}

func TestSearchDoneIsIdempotent(t *testing.T) {
	s, err := NewSearch(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 3, Y: 0}, openGrid(4, 1), DefaultOptions())
	require.NoError(t, err)
	s.Run(0)
	path := s.Path()
	expanded := s.Expanded()
	assert.Equal(t, SearchDone, s.Step())
	assert.Equal(t, path, s.Path())
	assert.Equal(t, expanded, s.Expanded())
}

func TestSearchOpenListHasNoDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cost := openGrid(24, 24)
	for i := range cost.Data {
		cost.Data[i] = uint8(1 + rng.Intn(50))
	}
	s, err := NewSearch(grid.Cell{X: 0, Y: 12}, grid.Cell{X: 23, Y: 3}, cost, DefaultOptions())
	require.NoError(t, err)

	for !s.State().Terminal() {
		s.Step()
		seen := make(map[grid.Cell]bool)
		for _, c := range s.OpenCells() {
			require.False(t, seen[c], "duplicate open entry %v", c)
			require.False(t, s.Closed(c), "closed cell %v still open", c)
			seen[c] = true
		}
	}
	assert.Equal(t, SearchDone, s.State())
}

func TestSearchTiesPopInInsertionOrder(t *testing.T) {
	s := newSearch(grid.Cell{}, grid.Cell{X: 9, Y: 9}, openGrid(10, 10), DefaultOptions())
	s.nodes = make([]searchNode, 100)
	for _, idx := range []int32{5, 7, 3} {
		s.nodes[idx] = searchNode{g: 10, h: 0, state: nodeOpen}
		s.pushOpen(idx)
	}
	s.nodes[9] = searchNode{g: 1, h: 0, state: nodeOpen}
	s.pushOpen(9)

	assert.Equal(t, []int32{3, 7, 5, 9}, s.open)
}

func TestSearchSnapshot(t *testing.T) {
	cost := openGrid(5, 5)
	s, err := NewSearch(grid.Cell{X: 0, Y: 2}, grid.Cell{X: 4, Y: 2}, cost, DefaultOptions())
	require.NoError(t, err)
	wallColumn(cost, 2)

	s.Run(0)
	assert.Equal(t, SearchDone, s.State())
	assert.Equal(t, uint8(1), s.CostGrid().Get(grid.Cell{X: 2, Y: 2}))
}

func TestSearchErrors(t *testing.T) {
	_, err := NewSearch(grid.Cell{X: -1, Y: 0}, grid.Cell{}, openGrid(3, 3), DefaultOptions())
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	cost := openGrid(5, 3)
	wallColumn(cost, 2)
	_, err = FindPath(cost, grid.Cell{X: 0, Y: 0}, grid.Cell{X: 4, Y: 0}, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestSmoothPath(t *testing.T) {
	cost := openGrid(10, 10)
	path := []grid.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 1}, {X: 4, Y: 2}, {X: 5, Y: 3}}
	smooth := SmoothPath(cost, path)
	assert.Equal(t, []grid.Cell{{X: 0, Y: 0}, {X: 5, Y: 3}}, smooth)

	cost.Set(grid.Cell{X: 3, Y: 2}, CostWall)
	cost.Set(grid.Cell{X: 2, Y: 1}, CostWall)
	smooth = SmoothPath(cost, path)
	assert.Greater(t, len(smooth), 2)
	assert.Equal(t, path[0], smooth[0])
	assert.Equal(t, path[len(path)-1], smooth[len(smooth)-1])
}

func TestClearLineRefusesCornerCuts(t *testing.T) {
	cost := openGrid(6, 6)
	assert.True(t, clearLine(cost, grid.Cell{X: 0, Y: 0}, grid.Cell{X: 5, Y: 3}))
	assert.True(t, clearLine(cost, grid.Cell{X: 5, Y: 5}, grid.Cell{X: 0, Y: 5}))

	cost.Set(grid.Cell{X: 1, Y: 0}, CostWall)
	assert.True(t, clearLine(cost, grid.Cell{X: 0, Y: 1}, grid.Cell{X: 0, Y: 4}))
	assert.False(t, clearLine(cost, grid.Cell{X: 0, Y: 0}, grid.Cell{X: 1, Y: 1}), "cuts past (1,0)")
	assert.False(t, clearLine(cost, grid.Cell{X: 1, Y: 1}, grid.Cell{X: 1, Y: 0}), "ends in a wall")

	path := []grid.Cell{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 2}}
	assert.Equal(t, []grid.Cell{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 2}}, SmoothPath(cost, path))
}
