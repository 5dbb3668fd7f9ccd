package pathfind

import "github.com/1siamBot/tileflow/engine/grid"

// Zone identifies one tile of the decomposition
type Zone struct{ X, Y int }

// Tiling decomposes a map into square tiles of Size cells. Neighboring tiles
// overlap by one row or column, so tile z covers cells
// [z*(Size-1), z*(Size-1)+Size-1] on each axis.
type Tiling struct {
	Size          int
	Width, Height int // map size in cells
}

// NewTiling returns the tiling of a width×height map
func NewTiling(size, width, height int) Tiling {
	return Tiling{Size: size, Width: width, Height: height}
}

// Stride is the distance between the first cells of adjacent tiles
func (t Tiling) Stride() int { return t.Size - 1 }

// ZonesX is the number of tile columns needed to cover the map
func (t Tiling) ZonesX() int { return zoneCount(t.Width, t.Stride()) }

// ZonesY is the number of tile rows needed to cover the map
func (t Tiling) ZonesY() int { return zoneCount(t.Height, t.Stride()) }

func zoneCount(cells, stride int) int {
	if cells <= 1 {
		return 1
	}
	return (cells - 1 + stride - 1) / stride
}

// Contains reports whether z is a zone of the map
func (t Tiling) Contains(z Zone) bool {
	return z.X >= 0 && z.Y >= 0 && z.X < t.ZonesX() && z.Y < t.ZonesY()
}

// ZoneOf returns the zone owning a map cell. Seam cells belong to two zones;
// the higher one owns them, except on the map's far edge.
func (t Tiling) ZoneOf(c grid.Cell) Zone {
	s := t.Stride()
	return Zone{
		X: min(c.X/s, t.ZonesX()-1),
		Y: min(c.Y/s, t.ZonesY()-1),
	}
}

// Min is the global cell at local (0,0) of z
func (t Tiling) Min(z Zone) grid.Cell {
	s := t.Stride()
	return grid.Cell{X: z.X * s, Y: z.Y * s}
}

// Max is the global cell at local (Size-1,Size-1) of z. It may lie beyond the map.
func (t Tiling) Max(z Zone) grid.Cell {
	m := t.Min(z)
	return grid.Cell{X: m.X + t.Size - 1, Y: m.Y + t.Size - 1}
}

// Covers reports whether the global cell c lies in z's range
func (t Tiling) Covers(z Zone, c grid.Cell) bool {
	lo, hi := t.Min(z), t.Max(z)
	return c.X >= lo.X && c.Y >= lo.Y && c.X <= hi.X && c.Y <= hi.Y
}

// ToLocal converts a global cell to z's local coordinates
func (t Tiling) ToLocal(z Zone, c grid.Cell) grid.Cell {
	m := t.Min(z)
	return grid.Cell{X: c.X - m.X, Y: c.Y - m.Y}
}

// ToGlobal converts a local cell of z to map coordinates
func (t Tiling) ToGlobal(z Zone, c grid.Cell) grid.Cell {
	m := t.Min(z)
	return grid.Cell{X: c.X + m.X, Y: c.Y + m.Y}
}

// Neighbors returns the up to 8 in-map zones around z
func (t Tiling) Neighbors(z Zone) []Zone {
	zones := make([]Zone, 0, 8)
	for _, o := range grid.Offsets {
		n := Zone{z.X + o[0], z.Y + o[1]}
		if t.Contains(n) {
			zones = append(zones, n)
		}
	}
	return zones
}

// Window copies the cost cells covered by z into a Size×Size grid in local
// coordinates. Cells beyond the map are walls.
func (t Tiling) Window(z Zone, cost *grid.Grid[uint8]) *grid.Grid[uint8] {
	win := grid.New(CostWall, t.Size, t.Size)
	m := t.Min(z)
	for ly := 0; ly < t.Size; ly++ {
		gy := m.Y + ly
		if gy >= cost.Height {
			break
		}
		for lx := 0; lx < t.Size; lx++ {
			gx := m.X + lx
			if gx >= cost.Width {
				break
			}
			win.Data[ly*t.Size+lx] = cost.Data[gy*cost.Width+gx]
		}
	}
	return win
}

// Shared returns the global cells present in both a and b: a full row or
// column for edge neighbors, one cell for corner neighbors, nothing otherwise
func (t Tiling) Shared(a, b Zone) []grid.Cell {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 || (dx == 0 && dy == 0) {
		return nil
	}
	loA, hiA := t.Min(a), t.Max(a)
	loB, hiB := t.Min(b), t.Max(b)
	x0, x1 := max(loA.X, loB.X), min(hiA.X, hiB.X)
	y0, y1 := max(loA.Y, loB.Y), min(hiA.Y, hiB.Y)
	x1 = min(x1, t.Width-1)
	y1 = min(y1, t.Height-1)

	var cells []grid.Cell
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			cells = append(cells, grid.Cell{X: x, Y: y})
		}
	}
	return cells
}
