package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/tileflow/engine/grid"
)

func tileOptions(size int) Options {
	opts := DefaultOptions()
	opts.TileSize = size
	return opts
}

func runHierarchical(t *testing.T, cost *grid.Grid[uint8], from, to grid.Cell, size int) *Hierarchical {
	t.Helper()
	h, err := NewHierarchical(from, to, cost, tileOptions(size))
	require.NoError(t, err)
	n := h.Run(1_000_000)
	require.Less(t, n, 1_000_000)
	return h
}

// requireSeamsAgree checks every cell shared by two computed zones holds the
// same integration in both
func requireSeamsAgree(t *testing.T, c *Composed) {
	t.Helper()
	for _, z := range c.Zones() {
		f := c.Field(z)
		for _, n := range c.Tiling.Neighbors(z) {
			nf := c.Field(n)
			if nf == nil {
				continue
			}
			for _, g := range c.Tiling.Shared(z, n) {
				a := f.Integration.Get(c.Tiling.ToLocal(z, g))
				b := nf.Integration.Get(c.Tiling.ToLocal(n, g))
				require.Equal(t, a, b, "cell %v between %v and %v", g, z, n)
			}
		}
	}
}

// requireDescends checks every reached cell but the target points at a
// neighbor with strictly smaller integration
func requireDescends(t *testing.T, c *Composed, to grid.Cell, sentinel int32) {
	t.Helper()
	for y := 0; y < c.Tiling.Height; y++ {
		for x := 0; x < c.Tiling.Width; x++ {
			cell := grid.Cell{X: x, Y: y}
			v, ok := c.IntegrationAt(cell)
			if !ok || v >= sentinel {
				continue
			}
			d, _ := c.DirectionAt(cell)
			if cell == to {
				require.Equal(t, DirNone, d)
				continue
			}
			require.NotEqual(t, DirNone, d, "cell %v value %d", cell, v)
			nv, ok := c.IntegrationAt(cell.Add(d.Vector()))
			require.True(t, ok, "cell %v points off the field", cell)
			require.Less(t, nv, v, "cell %v", cell)
		}
	}
}

// walk follows the composed directions from a cell until it stops
func walk(t *testing.T, c *Composed, from grid.Cell) grid.Cell {
	t.Helper()
	cell := from
	for i := 0; i < c.Tiling.Width*c.Tiling.Height; i++ {
		d, ok := c.DirectionAt(cell)
		require.True(t, ok, "walk left the field at %v", cell)
		if d == DirNone {
			return cell
		}
		cell = cell.Add(d.Vector())
	}
	t.Fatalf("walk from %v did not stop", from)
	return cell
}

func TestHierarchicalSingleTileMatchesTileField(t *testing.T) {
	cost := openGrid(8, 8)
	cost.Set(grid.Cell{X: 3, Y: 3}, CostWall)
	cost.Set(grid.Cell{X: 4, Y: 3}, 5)
	from, to := grid.Cell{X: 0, Y: 0}, grid.Cell{X: 5, Y: 6}

	h := runHierarchical(t, cost, from, to, 10)
	require.Equal(t, StitchComposed, h.Phase())
	res := h.Result()
	require.NotNil(t, res)
	assert.Equal(t, []Zone{{0, 0}}, h.Route())

	plain, err := NewTileField(cost, to, DefaultOptions())
	require.NoError(t, err)
	plain.Run()

	for i := range cost.Data {
		c := cost.CellAt(i)
		v, ok := res.IntegrationAt(c)
		require.True(t, ok)
		assert.Equal(t, plain.Integration.Get(c), v, "cell %v", c)
		d, _ := res.DirectionAt(c)
		assert.Equal(t, plain.DirectionAt(c), d, "cell %v", c)
	}
}

func TestHierarchicalOpenMap(t *testing.T) {
	cost := openGrid(40, 40)
	from, to := grid.Cell{X: 1, Y: 1}, grid.Cell{X: 38, Y: 38}
	h := runHierarchical(t, cost, from, to, 10)
	require.Equal(t, StitchComposed, h.Phase())
	res := h.Result()

	route := h.Route()
	require.NotEmpty(t, route)
	assert.Equal(t, h.Tiling().ZoneOf(to), route[0])
	assert.Equal(t, h.Tiling().ZoneOf(from), route[len(route)-1])
	for i := 1; i < len(route); i++ {
		dx, dy := abs(route[i].X-route[i-1].X), abs(route[i].Y-route[i-1].Y)
		assert.Equal(t, 1, dx+dy, "route hop %v -> %v", route[i-1], route[i])
	}

	// Route zones and their halo are all computed and ready
	for _, z := range route {
		require.NotNil(t, res.Field(z))
		for _, n := range h.Tiling().Neighbors(z) {
			f := res.Field(n)
			require.NotNil(t, f, "halo zone %v", n)
			assert.Equal(t, FieldReady, f.Phase())
		}
	}

	v, ok := res.IntegrationAt(to)
	require.True(t, ok)
	assert.Equal(t, int32(0), v)

	requireSeamsAgree(t, res)
	requireDescends(t, res, to, DefaultOptions().Sentinel)
	assert.Equal(t, to, walk(t, res, from))
}

func TestHierarchicalAroundWall(t *testing.T) {
	cost := openGrid(40, 40)
	for y := 0; y < 31; y++ {
		cost.Set(grid.Cell{X: 20, Y: y}, CostWall)
	}
	for x := 5; x < 35; x++ {
		cost.Set(grid.Cell{X: x, Y: 12}, 4)
	}
	from, to := grid.Cell{X: 2, Y: 2}, grid.Cell{X: 37, Y: 3}

	h := runHierarchical(t, cost, from, to, 10)
	require.Equal(t, StitchComposed, h.Phase())
	res := h.Result()

	requireSeamsAgree(t, res)
	requireDescends(t, res, to, DefaultOptions().Sentinel)
	assert.Equal(t, to, walk(t, res, from))

	// Every cell of the coarse path is covered by the composed field
	for _, c := range h.Search().Path() {
		v, ok := res.IntegrationAt(c)
		require.True(t, ok, "path cell %v", c)
		assert.Less(t, v, DefaultOptions().Sentinel)
	}
}

func TestHierarchicalTargetOnSeam(t *testing.T) {
	cost := openGrid(30, 30)
	from, to := grid.Cell{X: 25, Y: 2}, grid.Cell{X: 9, Y: 18}

	h := runHierarchical(t, cost, from, to, 10)
	require.Equal(t, StitchComposed, h.Phase())
	res := h.Result()

	for _, z := range res.Zones() {
		if res.Tiling.Covers(z, to) {
			assert.Equal(t, int32(0), res.Field(z).Integration.Get(res.Tiling.ToLocal(z, to)), "zone %v", z)
		}
	}
	requireSeamsAgree(t, res)
	requireDescends(t, res, to, DefaultOptions().Sentinel)
	assert.Equal(t, to, walk(t, res, from))
}

func TestHierarchicalUnreachable(t *testing.T) {
	cost := openGrid(30, 30)
	wallColumn(cost, 15)

	h := runHierarchical(t, cost, grid.Cell{X: 1, Y: 1}, grid.Cell{X: 28, Y: 28}, 10)
	assert.Equal(t, StitchUnreachable, h.Phase())
	assert.Nil(t, h.Result())
	assert.Nil(t, h.Route())
	assert.Equal(t, 0, h.Table().Len())

	steps := h.Steps()
	assert.Equal(t, StitchUnreachable, h.Step())
	assert.Equal(t, steps, h.Steps())
}

func TestHierarchicalPhases(t *testing.T) {
	h, err := NewHierarchical(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 25, Y: 25}, openGrid(30, 30), tileOptions(10))
	require.NoError(t, err)
	assert.Equal(t, StitchSearching, h.Phase())

	seen := map[StitchPhase]bool{}
	computing := false
	for !h.Phase().Terminal() {
		seen[h.Step()] = true
		if _, f, ok := h.Current(); ok {
			computing = true
			assert.NotEqual(t, FieldReady, f.Phase())
		}
	}
	assert.True(t, seen[StitchRouteToTiles])
	assert.True(t, seen[StitchComputingTiles])
	assert.True(t, seen[StitchComposed])
	assert.True(t, computing)

	_, _, ok := h.Current()
	assert.False(t, ok)
	assert.Equal(t, "composed", h.Phase().String())
}

func TestHierarchicalSnapshot(t *testing.T) {
	cost := openGrid(30, 30)
	h, err := NewHierarchical(grid.Cell{X: 1, Y: 1}, grid.Cell{X: 28, Y: 28}, cost, tileOptions(10))
	require.NoError(t, err)
	wallColumn(cost, 15)

	h.Run(0)
	assert.Equal(t, StitchComposed, h.Phase())
}

func TestHierarchicalErrors(t *testing.T) {
	_, err := NewHierarchical(grid.Cell{}, grid.Cell{X: 30, Y: 0}, openGrid(30, 30), tileOptions(10))
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = NewHierarchical(grid.Cell{}, grid.Cell{}, openGrid(30, 30), tileOptions(1))
	assert.ErrorIs(t, err, ErrInvalidTileSize)
}
