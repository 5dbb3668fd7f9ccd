package pathfind

import "github.com/1siamBot/tileflow/engine/grid"

// Composed is the sparse table of tile fields covering a map. A nil slot
// means the zone was not computed.
type Composed struct {
	Tiling Tiling
	fields []*TileField
	zones  []Zone // computed zones in visit order
}

func newComposed(t Tiling) *Composed {
	return &Composed{
		Tiling: t,
		fields: make([]*TileField, t.ZonesX()*t.ZonesY()),
	}
}

// Field returns the field of z, nil when absent or z is outside the map
func (c *Composed) Field(z Zone) *TileField {
	if !c.Tiling.Contains(z) {
		return nil
	}
	return c.fields[z.Y*c.Tiling.ZonesX()+z.X]
}

func (c *Composed) set(z Zone, f *TileField) {
	c.fields[z.Y*c.Tiling.ZonesX()+z.X] = f
	c.zones = append(c.zones, z)
}

// Zones lists the computed zones in the order they were first visited
func (c *Composed) Zones() []Zone { return c.zones }

// Len is the number of computed zones
func (c *Composed) Len() int { return len(c.zones) }

// Locate finds a computed field covering a map cell. Seam cells are covered
// by up to four zones; the owning zone is preferred.
func (c *Composed) Locate(cell grid.Cell) (Zone, *TileField, bool) {
	if cell.X < 0 || cell.Y < 0 || cell.X >= c.Tiling.Width || cell.Y >= c.Tiling.Height {
		return Zone{}, nil, false
	}
	own := c.Tiling.ZoneOf(cell)
	for dy := 0; dy >= -1; dy-- {
		for dx := 0; dx >= -1; dx-- {
			z := Zone{own.X + dx, own.Y + dy}
			if !c.Tiling.Covers(z, cell) {
				continue
			}
			if f := c.Field(z); f != nil {
				return z, f, true
			}
		}
	}
	return Zone{}, nil, false
}

// DirectionAt returns the flow code at a map cell
func (c *Composed) DirectionAt(cell grid.Cell) (Direction, bool) {
	z, f, ok := c.Locate(cell)
	if !ok {
		return DirNone, false
	}
	return f.Flow.Get(c.Tiling.ToLocal(z, cell)), true
}

// IntegrationAt returns the integration value at a map cell
func (c *Composed) IntegrationAt(cell grid.Cell) (int32, bool) {
	z, f, ok := c.Locate(cell)
	if !ok {
		return 0, false
	}
	return f.Integration.Get(c.Tiling.ToLocal(z, cell)), true
}

// IntegrationRange spans the reached values of every computed tile
func (c *Composed) IntegrationRange() (lo, hi int32, ok bool) {
	for _, z := range c.zones {
		flo, fhi, fok := c.Field(z).IntegrationRange()
		if !fok {
			continue
		}
		if !ok {
			lo, hi, ok = flo, fhi, true
			continue
		}
		lo = min(lo, flo)
		hi = max(hi, fhi)
	}
	return lo, hi, ok
}
