package maplib

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/1siamBot/tileflow/engine/grid"
)

// Cost values of the live map
const (
	CostOpen uint8 = 1
	CostWall uint8 = 255
)

// TerrainType defines the terrain painted onto a region
type TerrainType uint8

const (
	TerrainGrass TerrainType = iota
	TerrainDirt
	TerrainSand
	TerrainWater
	TerrainRock
	TerrainCliff
	TerrainRoad
	TerrainBridge
	TerrainForest
)

// terrainCost maps terrain to a cell cost. Water and cliffs block ground units.
var terrainCost = [...]uint8{
	TerrainGrass:  10,
	TerrainDirt:   10,
	TerrainSand:   13,
	TerrainWater:  CostWall,
	TerrainRock:   20,
	TerrainCliff:  CostWall,
	TerrainRoad:   7,
	TerrainBridge: 7,
	TerrainForest: 15,
}

// Cost returns the cell cost of a terrain type
func (t TerrainType) Cost() uint8 {
	if int(t) >= len(terrainCost) {
		return CostOpen
	}
	return terrainCost[t]
}

var terrainNames = [...]string{
	TerrainGrass:  "grass",
	TerrainDirt:   "dirt",
	TerrainSand:   "sand",
	TerrainWater:  "water",
	TerrainRock:   "rock",
	TerrainCliff:  "cliff",
	TerrainRoad:   "road",
	TerrainBridge: "bridge",
	TerrainForest: "forest",
}

func (t TerrainType) String() string {
	if int(t) >= len(terrainNames) {
		return "unknown"
	}
	return terrainNames[t]
}

// Next cycles to the following terrain type, wrapping after the last
func (t TerrainType) Next() TerrainType {
	return TerrainType((int(t) + 1) % len(terrainCost))
}

// Change records one cell edit
type Change struct {
	Cell     grid.Cell
	Old, New uint8
}

// CostMap is the live, editable cost grid. Costs range 1-254; 255 is a wall.
// Requests read it through Snapshot so edits never reach running computations.
type CostMap struct {
	Name string

	cost    *grid.Grid[uint8]
	version uint64
}

// NewCostMap creates an all-open map
func NewCostMap(name string, width, height int) *CostMap {
	return &CostMap{
		Name: name,
		cost: grid.New(CostOpen, width, height),
	}
}

// Width of the map in cells
func (m *CostMap) Width() int { return m.cost.Width }

// Height of the map in cells
func (m *CostMap) Height() int { return m.cost.Height }

// InBounds checks if a cell is on the map
func (m *CostMap) InBounds(c grid.Cell) bool { return m.cost.InBounds(c) }

// Cost returns the cost at c
func (m *CostMap) Cost(c grid.Cell) uint8 { return m.cost.Get(c) }

// Grid exposes the live grid for drawing. Callers must not modify it.
func (m *CostMap) Grid() *grid.Grid[uint8] { return m.cost }

// Version increases on every edit
func (m *CostMap) Version() uint64 { return m.version }

// Snapshot returns an independent copy of the costs
func (m *CostMap) Snapshot() *grid.Grid[uint8] { return m.cost.Clone() }

// SetCost writes one cell and reports the change. 0 is stored as 1.
func (m *CostMap) SetCost(c grid.Cell, v uint8) (Change, bool) {
	if !m.cost.InBounds(c) {
		return Change{}, false
	}
	if v == 0 {
		v = CostOpen
	}
	old := m.cost.Get(c)
	if old == v {
		return Change{}, false
	}
	m.cost.Set(c, v)
	m.version++
	return Change{Cell: c, Old: old, New: v}, true
}

// Brush writes v over the clamped 3×3 block around c and returns the cells
// that changed
func (m *CostMap) Brush(c grid.Cell, v uint8) []Change {
	if !m.cost.InBounds(c) {
		return nil
	}
	var changes []Change
	for _, cell := range m.cost.Grow(c) {
		if ch, ok := m.SetCost(cell, v); ok {
			changes = append(changes, ch)
		}
	}
	return changes
}

// PaintWall walls off the 3×3 block around c
func (m *CostMap) PaintWall(c grid.Cell) []Change { return m.Brush(c, CostWall) }

// PaintOpen clears the 3×3 block around c
func (m *CostMap) PaintOpen(c grid.Cell) []Change { return m.Brush(c, CostOpen) }

// Reset opens every cell
func (m *CostMap) Reset() {
	m.cost.Fill(CostOpen)
	m.version++
}

// Load replaces every cost with those of g, which must match the map size
func (m *CostMap) Load(g *grid.Grid[uint8]) error {
	if g.Width != m.cost.Width || g.Height != m.cost.Height {
		return fmt.Errorf("cost grid %dx%d does not match map %dx%d", g.Width, g.Height, m.cost.Width, m.cost.Height)
	}
	copy(m.cost.Data, g.Data)
	for i, v := range m.cost.Data {
		if v == 0 {
			m.cost.Data[i] = CostOpen
		}
	}
	m.version++
	return nil
}

type mapFile struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Costs  []byte `json:"costs"`
}

// SaveJSON saves the map to a JSON file
func (m *CostMap) SaveJSON(path string) error {
	data, err := json.MarshalIndent(mapFile{
		Name:   m.Name,
		Width:  m.cost.Width,
		Height: m.cost.Height,
		Costs:  m.cost.Data,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding map %s: %w", m.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing map %s: %w", path, err)
	}
	return nil
}

// LoadJSON loads a map from a JSON file
func LoadJSON(path string) (*CostMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map %s: %w", path, err)
	}
	var f mapFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing map %s: %w", path, err)
	}
	if f.Width <= 0 || f.Height <= 0 || len(f.Costs) != f.Width*f.Height {
		return nil, fmt.Errorf("map %s: %d costs for %dx%d", path, len(f.Costs), f.Width, f.Height)
	}
	m := NewCostMap(f.Name, f.Width, f.Height)
	if err := m.Load(&grid.Grid[uint8]{Width: f.Width, Height: f.Height, Data: f.Costs}); err != nil {
		return nil, err
	}
	m.version = 0
	return m, nil
}
