package pathfind

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/1siamBot/tileflow/engine/grid"
)

// StitchPhase is the phase of a hierarchical computation
type StitchPhase uint8

const (
	StitchSearching StitchPhase = iota
	StitchRouteToTiles
	StitchComputingTiles
	StitchComposed
	StitchUnreachable
)

func (p StitchPhase) String() string {
	switch p {
	case StitchSearching:
		return "searching"
	case StitchRouteToTiles:
		return "route-to-tiles"
	case StitchComputingTiles:
		return "computing-tiles"
	case StitchComposed:
		return "composed"
	case StitchUnreachable:
		return "unreachable"
	}
	return fmt.Sprintf("StitchPhase(%d)", uint8(p))
}

// Terminal reports whether no further step changes the computation
func (p StitchPhase) Terminal() bool {
	return p == StitchComposed || p == StitchUnreachable
}

// Hierarchical runs a coarse search over the whole map, then computes tile
// fields along the zones the route crosses, stitching their borders so the
// composed integration field is continuous across seams
type Hierarchical struct {
	tiling Tiling
	opts   Options
	cost   *grid.Grid[uint8]
	from   grid.Cell
	to     grid.Cell

	phase  StitchPhase
	search *Search
	route  []Zone // zones crossed by the coarse path, target first
	queue  []Zone
	table  *Composed

	current      Zone
	currentField *TileField
	active       bool

	sweeps     int
	composing  bool
	flowCursor int
	steps      int
}

// NewHierarchical starts a hierarchical request over a snapshot of cost
func NewHierarchical(from, to grid.Cell, cost *grid.Grid[uint8], opts Options) (*Hierarchical, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !cost.InBounds(from) || !cost.InBounds(to) {
		return nil, fmt.Errorf("%w: from %v to %v in %dx%d", ErrOutOfBounds, from, to, cost.Width, cost.Height)
	}
	snapshot := cost.Clone()
	t := NewTiling(opts.TileSize, cost.Width, cost.Height)
	return &Hierarchical{
		tiling: t,
		opts:   opts,
		cost:   snapshot,
		from:   from,
		to:     to,
		phase:  StitchSearching,
		search: newSearch(from, to, snapshot, opts),
		table:  newComposed(t),
	}, nil
}

// Step performs one bounded unit of work and returns the resulting phase
func (h *Hierarchical) Step() StitchPhase {
	if h.phase.Terminal() {
		return h.phase
	}
	h.steps++
	switch h.phase {
	case StitchSearching:
		switch h.search.Step() {
		case SearchDone:
			h.phase = StitchRouteToTiles
		case SearchUnreachable:
			h.phase = StitchUnreachable
			slog.Debug("hierarchical search unreachable", "from", h.from, "to", h.to, "expanded", h.search.Expanded())
		}
	case StitchRouteToTiles:
		h.buildRoute()
		h.phase = StitchComputingTiles
	case StitchComputingTiles:
		h.stepTiles()
	}
	return h.phase
}

// Run steps until a terminal phase or maxSteps (<= 0: unlimited)
func (h *Hierarchical) Run(maxSteps int) int {
	n := 0
	for !h.phase.Terminal() && (maxSteps <= 0 || n < maxSteps) {
		h.Step()
		n++
	}
	return n
}

// buildRoute maps the coarse path to the ordered zones it crosses, with
// L-shaped detours instead of diagonal zone hops and a one-zone halo, and
// queues them forward then backward
func (h *Hierarchical) buildRoute() {
	path := h.search.Path()
	var crossed []Zone
	for i := len(path) - 1; i >= 0; i-- {
		z := h.tiling.ZoneOf(path[i])
		if n := len(crossed); n > 0 {
			prev := crossed[n-1]
			if prev == z {
				continue
			}
			if prev.X != z.X && prev.Y != z.Y {
				crossed = append(crossed, Zone{z.X, prev.Y})
			}
		}
		crossed = append(crossed, z)
	}

	seen := make(map[Zone]bool, len(crossed)*9)
	var ordered []Zone
	add := func(z Zone) {
		if !seen[z] {
			seen[z] = true
			ordered = append(ordered, z)
		}
	}
	for _, z := range crossed {
		add(z)
	}
	h.route = slices.Clone(ordered)
	for _, z := range crossed {
		for _, n := range h.tiling.Neighbors(z) {
			add(n)
		}
	}

	h.queue = make([]Zone, 0, 2*len(ordered))
	h.queue = append(h.queue, ordered...)
	for i := len(ordered) - 1; i >= 0; i-- {
		h.queue = append(h.queue, ordered[i])
	}
	slog.Debug("route mapped to zones", "crossed", len(h.route), "queued", len(ordered))
}

func (h *Hierarchical) stepTiles() {
	switch {
	case h.active:
		if h.currentField.Step() {
			h.active = false
		}
	case h.composing:
		zones := h.table.Zones()
		if h.flowCursor < len(zones) {
			h.composeFlow(zones[h.flowCursor])
			h.flowCursor++
		}
		if h.flowCursor >= len(zones) {
			h.phase = StitchComposed
			slog.Debug("composed field ready", "zones", len(zones), "sweeps", h.sweeps, "steps", h.steps)
		}
	case len(h.queue) > 0:
		z := h.queue[0]
		h.queue = h.queue[1:]
		h.startZone(z)
	default:
		h.settle()
	}
}

// startZone allocates the field of z on first visit, applies the junction
// from computed neighbors and makes z current if it has work left
func (h *Hierarchical) startZone(z Zone) {
	f := h.table.Field(z)
	if f == nil {
		f = newTileField(h.tiling.Window(z, h.cost), h.opts.Sentinel)
		f.SkipFlow = true
		if h.tiling.Covers(z, h.to) {
			f.objective = h.tiling.ToLocal(z, h.to)
			f.hasObjective = true
		}
		f.Step()
		h.table.set(z, f)
	}
	h.junction(z, f)
	if f.Phase() != FieldReady {
		h.current, h.currentField, h.active = z, f, true
	}
}

// junction copies smaller integration values from the cells z shares with
// each computed neighbor into z's field and seeds them for relaxation
func (h *Hierarchical) junction(z Zone, f *TileField) bool {
	improved := false
	for _, n := range h.tiling.Neighbors(z) {
		nf := h.table.Field(n)
		if nf == nil {
			continue
		}
		for _, g := range h.tiling.Shared(z, n) {
			v := nf.Integration.Get(h.tiling.ToLocal(n, g))
			if f.Seed(h.tiling.ToLocal(z, g), v) {
				improved = true
			}
		}
	}
	return improved
}

// settle runs the junction over every computed zone once and queues those
// that improved. Values only decrease, so sweeps stop once seams agree.
func (h *Hierarchical) settle() {
	h.sweeps++
	for _, z := range h.table.Zones() {
		if h.junction(z, h.table.Field(z)) {
			h.queue = append(h.queue, z)
		}
	}
	if len(h.queue) == 0 {
		h.composing = true
	}
}

// composeFlow recomputes the directions of z with its neighbors' integration
// visible across the tile edge
func (h *Hierarchical) composeFlow(z Zone) {
	neighbors := h.tiling.Neighbors(z)
	f := h.table.Field(z)
	f.ComputeFlow(func(x, y int) (int32, bool) {
		g := h.tiling.ToGlobal(z, grid.Cell{X: x, Y: y})
		if !h.cost.InBounds(g) {
			return 0, false
		}
		best, ok := int32(0), false
		for _, n := range neighbors {
			nf := h.table.Field(n)
			if nf == nil || !h.tiling.Covers(n, g) {
				continue
			}
			v := nf.Integration.Get(h.tiling.ToLocal(n, g))
			if !ok || v < best {
				best, ok = v, true
			}
		}
		return best, ok
	})
}

// Phase returns the current phase
func (h *Hierarchical) Phase() StitchPhase { return h.phase }

// From returns the start cell
func (h *Hierarchical) From() grid.Cell { return h.from }

// To returns the target cell
func (h *Hierarchical) To() grid.Cell { return h.to }

// Search exposes the coarse search
func (h *Hierarchical) Search() *Search { return h.search }

// Tiling returns the decomposition used
func (h *Hierarchical) Tiling() Tiling { return h.tiling }

// Route lists the zones crossed by the coarse path, target zone first
func (h *Hierarchical) Route() []Zone { return h.route }

// Table returns the table of fields computed so far
func (h *Hierarchical) Table() *Composed { return h.table }

// Result returns the composed field once the computation is Composed
func (h *Hierarchical) Result() *Composed {
	if h.phase != StitchComposed {
		return nil
	}
	return h.table
}

// Current returns the zone whose field is being integrated, if any
func (h *Hierarchical) Current() (Zone, *TileField, bool) {
	if !h.active {
		return Zone{}, nil, false
	}
	return h.current, h.currentField, true
}

// Steps is the number of Step calls that did work
func (h *Hierarchical) Steps() int { return h.steps }
