package pathfind

import (
	"math"
	"math/rand"

	"github.com/1siamBot/tileflow/engine/grid"
)

// AgentParams tunes how an agent blends flow directions into its velocity
type AgentParams struct {
	CellSize  float64 // world units per cell
	Retention float64 // share of the previous velocity kept each advance
	Weight    float64 // share of the new direction added each advance
	Jitter    float64 // per-axis random nudge drawn from [-Jitter/2, Jitter/2)
}

// DefaultAgentParams returns the reference blending (0.8 / 0.2, unit jitter)
func DefaultAgentParams() AgentParams {
	return AgentParams{
		CellSize:  8,
		Retention: 0.8,
		Weight:    0.2,
		Jitter:    1,
	}
}

// Agent is a point mass steered by a composed field
type Agent struct {
	X, Y   float64 // world position
	VX, VY float64 // velocity per advance

	params   AgentParams
	rng      *rand.Rand
	waypoint int // next path waypoint for SteerPath; -1 picks the nearest
}

// NewAgent places an agent at a world position. rng may be nil when
// params.Jitter is 0.
func NewAgent(x, y float64, params AgentParams, rng *rand.Rand) *Agent {
	return &Agent{X: x, Y: y, params: params, rng: rng, waypoint: -1}
}

// Cell returns the grid cell under the agent
func (a *Agent) Cell() grid.Cell {
	return grid.Cell{
		X: int(math.Floor(a.X / a.params.CellSize)),
		Y: int(math.Floor(a.Y / a.params.CellSize)),
	}
}

// Follow reads the direction under the agent; DirNone outside computed tiles
func (a *Agent) Follow(c *Composed) Direction {
	if c == nil {
		return DirNone
	}
	d, _ := c.DirectionAt(a.Cell())
	return d
}

// Advance blends d into the velocity and moves the agent by it
func (a *Agent) Advance(d Direction) {
	dx, dy := d.Vector()
	a.VX = a.VX*a.params.Retention + float64(dx)*a.params.Weight
	a.VY = a.VY*a.params.Retention + float64(dy)*a.params.Weight
	if a.params.Jitter > 0 && a.rng != nil {
		a.VX += (a.rng.Float64() - 0.5) * a.params.Jitter
		a.VY += (a.rng.Float64() - 0.5) * a.params.Jitter
	}
	a.X += a.VX
	a.Y += a.VY
}

// ResetPath makes the next SteerPath call start from the waypoint nearest
// the agent
func (a *Agent) ResetPath() { a.waypoint = -1 }

// Waypoint returns the index of the waypoint the agent is heading for
func (a *Agent) Waypoint() int { return a.waypoint }

// SteerPath moves the agent toward its next waypoint on path at speed cells
// per call, moving on once a waypoint is reached. Returns false when the
// path is used up.
func (a *Agent) SteerPath(path []grid.Cell, speed float64) bool {
	cs := a.params.CellSize
	ux, uy := a.X/cs, a.Y/cs
	if a.waypoint < 0 {
		a.waypoint = nearestWaypoint(ux, uy, path)
	}
	for a.waypoint < len(path) {
		s := Steer(ux, uy, speed, path, a.waypoint)
		if s.VX == 0 && s.VY == 0 {
			a.waypoint++
			continue
		}
		a.VX, a.VY = s.VX*cs, s.VY*cs
		a.X += a.VX
		a.Y += a.VY
		return true
	}
	a.VX, a.VY = 0, 0
	return false
}

func nearestWaypoint(ux, uy float64, path []grid.Cell) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range path {
		dx, dy := float64(c.X)+0.5-ux, float64(c.Y)+0.5-uy
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// SteerResult contains the computed steering velocity
type SteerResult struct {
	VX, VY float64
}

// Steer computes a velocity toward waypoint pathIdx of a cell path, for
// agents following a flat search result instead of a composed field.
// ux, uy are in cell units.
func Steer(ux, uy, speed float64, path []grid.Cell, pathIdx int) SteerResult {
	if pathIdx >= len(path) {
		return SteerResult{}
	}

	target := path[pathIdx]
	tx, ty := float64(target.X)+0.5, float64(target.Y)+0.5
	dx, dy := tx-ux, ty-uy
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < 0.01 {
		return SteerResult{}
	}
	if dist < speed {
		return SteerResult{VX: dx, VY: dy}
	}
	return SteerResult{VX: dx / dist * speed, VY: dy / dist * speed}
}
