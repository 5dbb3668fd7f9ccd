package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/tileflow/engine/grid"
)

func TestTilingCounts(t *testing.T) {
	tests := []struct {
		size, cells, zones int
	}{
		{10, 30, 4},
		{10, 28, 3},
		{10, 10, 1},
		{10, 11, 2},
		{10, 1, 1},
		{100, 1000, 11},
		{2, 5, 4},
	}
	for _, tt := range tests {
		tl := NewTiling(tt.size, tt.cells, tt.cells)
		assert.Equal(t, tt.zones, tl.ZonesX(), "size %d cells %d", tt.size, tt.cells)
		assert.Equal(t, tt.zones, tl.ZonesY())
	}
}

func TestTilingZoneOf(t *testing.T) {
	tl := NewTiling(10, 28, 30)
	assert.Equal(t, Zone{0, 0}, tl.ZoneOf(grid.Cell{X: 8, Y: 8}))
	assert.Equal(t, Zone{1, 1}, tl.ZoneOf(grid.Cell{X: 9, Y: 9}))
	assert.Equal(t, Zone{2, 3}, tl.ZoneOf(grid.Cell{X: 27, Y: 29}))

	// Every cell lies in the range of its owning zone
	for y := 0; y < tl.Height; y++ {
		for x := 0; x < tl.Width; x++ {
			c := grid.Cell{X: x, Y: y}
			z := tl.ZoneOf(c)
			require.True(t, tl.Contains(z))
			require.True(t, tl.Covers(z, c), "cell %v zone %v", c, z)
		}
	}
}

func TestTilingCoordinates(t *testing.T) {
	tl := NewTiling(10, 40, 40)
	z := Zone{2, 1}
	assert.Equal(t, grid.Cell{X: 18, Y: 9}, tl.Min(z))
	assert.Equal(t, grid.Cell{X: 27, Y: 18}, tl.Max(z))

	g := grid.Cell{X: 20, Y: 15}
	local := tl.ToLocal(z, g)
	assert.Equal(t, grid.Cell{X: 2, Y: 6}, local)
	assert.Equal(t, g, tl.ToGlobal(z, local))
	assert.False(t, tl.Covers(z, grid.Cell{X: 28, Y: 15}))
}

func TestTilingNeighbors(t *testing.T) {
	tl := NewTiling(10, 30, 30)
	assert.Equal(t, []Zone{{1, 0}, {0, 1}, {1, 1}}, tl.Neighbors(Zone{0, 0}))
	assert.Len(t, tl.Neighbors(Zone{1, 1}), 8)
	assert.Len(t, tl.Neighbors(Zone{3, 1}), 5)
}

func TestTilingWindow(t *testing.T) {
	cost := grid.New[uint8](3, 30, 30)
	cost.Set(grid.Cell{X: 28, Y: 29}, 7)
	tl := NewTiling(10, 30, 30)

	win := tl.Window(Zone{3, 3}, cost)
	require.Equal(t, 10, win.Width)
	require.Equal(t, 10, win.Height)
	assert.Equal(t, uint8(3), win.Get(grid.Cell{X: 0, Y: 0}))
	assert.Equal(t, uint8(7), win.Get(grid.Cell{X: 1, Y: 2}))
	assert.Equal(t, CostWall, win.Get(grid.Cell{X: 3, Y: 0}))
	assert.Equal(t, CostWall, win.Get(grid.Cell{X: 0, Y: 3}))

	// Windows copy, not alias
	win.Set(grid.Cell{X: 0, Y: 0}, 9)
	assert.Equal(t, uint8(3), cost.Get(grid.Cell{X: 27, Y: 27}))
}

func TestTilingShared(t *testing.T) {
	tl := NewTiling(10, 30, 30)

	edge := tl.Shared(Zone{0, 0}, Zone{1, 0})
	assert.Len(t, edge, 10)
	for _, c := range edge {
		assert.Equal(t, 9, c.X)
	}
	assert.Equal(t, edge, tl.Shared(Zone{1, 0}, Zone{0, 0}))

	assert.Equal(t, []grid.Cell{{X: 9, Y: 9}}, tl.Shared(Zone{0, 0}, Zone{1, 1}))
	assert.Equal(t, []grid.Cell{{X: 9, Y: 9}}, tl.Shared(Zone{1, 0}, Zone{0, 1}))
	assert.Nil(t, tl.Shared(Zone{0, 0}, Zone{2, 0}))
	assert.Nil(t, tl.Shared(Zone{1, 1}, Zone{1, 1}))

	clipped := tl.Shared(Zone{2, 3}, Zone{3, 3})
	assert.Equal(t, []grid.Cell{{X: 27, Y: 27}, {X: 27, Y: 28}, {X: 27, Y: 29}}, clipped)
}

func TestComposedLocate(t *testing.T) {
	tl := NewTiling(10, 30, 30)
	c := newComposed(tl)
	cost := grid.New[uint8](1, 10, 10)

	left := newTileField(cost.Clone(), DefaultOptions().Sentinel)
	c.set(Zone{0, 0}, left)

	z, f, ok := c.Locate(grid.Cell{X: 9, Y: 3})
	require.True(t, ok)
	assert.Equal(t, Zone{0, 0}, z)
	assert.Same(t, left, f)

	_, _, ok = c.Locate(grid.Cell{X: 10, Y: 3})
	assert.False(t, ok)
	_, _, ok = c.Locate(grid.Cell{X: -1, Y: 3})
	assert.False(t, ok)

	right := newTileField(cost.Clone(), DefaultOptions().Sentinel)
	c.set(Zone{1, 0}, right)
	z, f, ok = c.Locate(grid.Cell{X: 9, Y: 3})
	require.True(t, ok)
	assert.Equal(t, Zone{1, 0}, z)
	assert.Same(t, right, f)

	assert.Equal(t, []Zone{{0, 0}, {1, 0}}, c.Zones())
	assert.Equal(t, 2, c.Len())
	assert.Nil(t, c.Field(Zone{5, 0}))
	_, _, ok = c.IntegrationRange()
	assert.False(t, ok)
}
