package pathfind

import (
	"fmt"

	"github.com/1siamBot/tileflow/engine/grid"
)

// FieldPhase is the phase of a tile field computation
type FieldPhase uint8

const (
	FieldCreated FieldPhase = iota
	FieldIntegrating
	FieldFlowing
	FieldReady
)

func (p FieldPhase) String() string {
	switch p {
	case FieldCreated:
		return "created"
	case FieldIntegrating:
		return "integrating"
	case FieldFlowing:
		return "flowing"
	case FieldReady:
		return "ready"
	}
	return fmt.Sprintf("FieldPhase(%d)", uint8(p))
}

// OutsideLookup returns the integration of a cell just outside a tile, given
// in the tile's local coordinates (x or y may be -1 or the tile size).
// ok is false when no computed field covers that cell.
type OutsideLookup func(x, y int) (v int32, ok bool)

// TileField computes an integration (distance-to-objective) field over one
// tile by wavefront relaxation, then derives a direction per cell
type TileField struct {
	Cost        *grid.Grid[uint8]
	Integration *grid.Grid[int32]
	Flow        *grid.Grid[Direction]

	// SkipFlow makes integration go straight to Ready, leaving the direction
	// pass to the caller (see ComputeFlow)
	SkipFlow bool

	objective    grid.Cell
	hasObjective bool
	sentinel     int32
	phase        FieldPhase

	frontier []grid.Cell
	next     []grid.Cell
	stamp    []uint32 // wave in which a cell was last queued
	wave     uint32
	buf      []grid.Neighbor
}

// NewTileField creates a field over a copy of cost with the given objective
func NewTileField(cost *grid.Grid[uint8], objective grid.Cell, opts Options) (*TileField, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !cost.InBounds(objective) {
		return nil, fmt.Errorf("%w: objective %v in %dx%d", ErrOutOfBounds, objective, cost.Width, cost.Height)
	}
	f := newTileField(cost.Clone(), opts.Sentinel)
	f.objective = objective
	f.hasObjective = true
	return f, nil
}

// newTileField takes ownership of cost. The field has no objective until one
// is set; it then only converges from seeded cells.
func newTileField(cost *grid.Grid[uint8], sentinel int32) *TileField {
	w, h := cost.Width, cost.Height
	return &TileField{
		Cost:        cost,
		Integration: grid.New(sentinel, w, h),
		Flow:        grid.New(DirNone, w, h),
		sentinel:    sentinel,
		phase:       FieldCreated,
		stamp:       make([]uint32, w*h),
	}
}

// Phase returns the current phase
func (f *TileField) Phase() FieldPhase { return f.phase }

// Objective returns the objective cell and whether the field has one
func (f *TileField) Objective() (grid.Cell, bool) { return f.objective, f.hasObjective }

// Sentinel is the integration value of unreached cells
func (f *TileField) Sentinel() int32 { return f.sentinel }

// Frontier lists the cells awaiting relaxation. Read only.
func (f *TileField) Frontier() []grid.Cell { return f.frontier }

// Step performs one unit of work and reports whether the field is Ready
func (f *TileField) Step() bool {
	switch f.phase {
	case FieldCreated:
		f.reset()
	case FieldIntegrating:
		f.stepIntegration()
		if len(f.frontier) == 0 {
			if f.SkipFlow {
				f.phase = FieldReady
			} else {
				f.phase = FieldFlowing
			}
		}
	case FieldFlowing:
		f.ComputeFlow(nil)
	}
	return f.phase == FieldReady
}

// Run steps the field to Ready and returns the number of steps taken
func (f *TileField) Run() int {
	n := 0
	for f.phase != FieldReady {
		f.Step()
		n++
	}
	return n
}

// SetObjective discards integration and flow, keeps the cost grid and
// performs the first step toward the new objective
func (f *TileField) SetObjective(c grid.Cell) {
	f.objective = c
	f.hasObjective = true
	f.phase = FieldCreated
	f.Step()
}

// Reset returns the field to Created
func (f *TileField) Reset() {
	f.phase = FieldCreated
}

func (f *TileField) reset() {
	f.Integration.Fill(f.sentinel)
	f.Flow.Fill(DirNone)
	f.frontier = f.frontier[:0]
	f.wave++
	if f.hasObjective {
		f.Integration.Set(f.objective, 0)
		f.enqueue(f.objective)
	}
	f.phase = FieldIntegrating
}

func (f *TileField) enqueue(c grid.Cell) {
	i := f.Cost.Index(c)
	if f.stamp[i] == f.wave {
		return
	}
	f.stamp[i] = f.wave
	f.frontier = append(f.frontier, c)
}

// stepIntegration relaxes the neighbors of every frontier cell; improved
// cells form the next frontier
func (f *TileField) stepIntegration() {
	cur := f.frontier
	f.frontier = f.next[:0]
	f.wave++

	w, h := f.Cost.Width, f.Cost.Height
	integ := f.Integration.Data
	for _, c := range cur {
		v := integ[c.Y*w+c.X]
		f.buf = grid.AppendNeighbors(f.buf[:0], c, w, h)
		for _, nb := range f.buf {
			i := nb.Y*w + nb.X
			cost := f.Cost.Data[i]
			if cost == CostWall {
				continue
			}
			candidate := int64(v) + int64(cost)*int64(nb.Edge)
			if candidate < int64(integ[i]) && candidate < int64(f.sentinel) {
				integ[i] = int32(candidate)
				f.enqueue(nb.Cell)
			}
		}
	}
	f.next = cur
}

// Seed lowers the integration of c to v and queues it for relaxation. A
// field past integration resumes it. Returns false when v is no improvement.
func (f *TileField) Seed(c grid.Cell, v int32) bool {
	if f.phase == FieldCreated {
		f.reset()
	}
	if v >= f.sentinel || v >= f.Integration.Get(c) {
		return false
	}
	f.Integration.Set(c, v)
	f.enqueue(c)
	f.phase = FieldIntegrating
	return true
}

// ComputeFlow writes a direction for every cell: toward the neighbor with the
// strictly smallest integration below the cell's own, DirNone if there is
// none. outside, when not nil, supplies cells beyond the tile edge. The field
// becomes Ready.
func (f *TileField) ComputeFlow(outside OutsideLookup) {
	w, h := f.Integration.Width, f.Integration.Height
	integ := f.Integration.Data
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			own := integ[i]
			dir := DirNone
			if own < f.sentinel {
				best := own
				for _, o := range grid.Offsets {
					nx, ny := x+o[0], y+o[1]
					var v int32
					if nx >= 0 && ny >= 0 && nx < w && ny < h {
						v = integ[ny*w+nx]
					} else if outside != nil {
						var ok bool
						if v, ok = outside(nx, ny); !ok {
							continue
						}
					} else {
						continue
					}
					if v < best {
						best = v
						dir = DirectionTo(o[0], o[1])
					}
				}
			}
			f.Flow.Data[i] = dir
		}
	}
	f.phase = FieldReady
}

// IntegrationRange returns the smallest and largest reached integration
// values; ok is false when no cell is reached
func (f *TileField) IntegrationRange() (lo, hi int32, ok bool) {
	for _, v := range f.Integration.Data {
		if v >= f.sentinel {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi, ok
}

// DirectionAt returns the flow code at a local cell
func (f *TileField) DirectionAt(c grid.Cell) Direction {
	return f.Flow.Get(c)
}
