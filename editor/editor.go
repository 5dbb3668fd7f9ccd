package editor

import (
	"fmt"

	"github.com/1siamBot/tileflow/engine/grid"
	"github.com/1siamBot/tileflow/engine/maplib"
)

// Editor holds cost map editing state
type Editor struct {
	Map       *maplib.CostMap
	Tool      EditorTool
	BrushCost uint8 // cost painted by ToolCost
	Terrain   maplib.TerrainType
	UndoStack [][]maplib.Change
	RedoStack [][]maplib.Change
	FilePath  string
	Modified  bool
}

// EditorTool represents the current editor tool
type EditorTool int

const (
	ToolWall EditorTool = iota
	ToolOpen
	ToolCost
	ToolTerrain
)

func (t EditorTool) String() string {
	switch t {
	case ToolWall:
		return "wall"
	case ToolOpen:
		return "open"
	case ToolCost:
		return "cost"
	case ToolTerrain:
		return "terrain"
	}
	return "unknown"
}

// NextTool cycles through the tools
func (e *Editor) NextTool() {
	e.Tool = (e.Tool + 1) % (ToolTerrain + 1)
}

// NextTerrain selects the following terrain for ToolTerrain
func (e *Editor) NextTerrain() {
	e.Terrain = e.Terrain.Next()
}

// AdjustBrushCost changes the ToolCost value by delta, kept within 1-254
func (e *Editor) AdjustBrushCost(delta int) {
	v := int(e.BrushCost) + delta
	e.BrushCost = uint8(max(int(maplib.CostOpen), min(int(maplib.CostWall)-1, v)))
}

// BrushLabel describes what the current tool paints
func (e *Editor) BrushLabel() string {
	switch e.Tool {
	case ToolCost:
		return fmt.Sprintf("cost %d", e.BrushCost)
	case ToolTerrain:
		return fmt.Sprintf("terrain %s", e.Terrain)
	}
	return e.Tool.String()
}

// NewEditor creates an editor over a fresh open map
func NewEditor(width, height int) *Editor {
	return &Editor{
		Map:       maplib.NewCostMap("Untitled", width, height),
		BrushCost: 50,
		Terrain:   maplib.TerrainForest,
	}
}

// LoadMap loads a map file
func (e *Editor) LoadMap(path string) error {
	m, err := maplib.LoadJSON(path)
	if err != nil {
		return err
	}
	e.Map = m
	e.FilePath = path
	e.Modified = false
	e.UndoStack = nil
	e.RedoStack = nil
	return nil
}

// SaveMap saves the current map
func (e *Editor) SaveMap(path string) error {
	if path == "" {
		path = e.FilePath
	}
	if path == "" {
		path = "untitled.json"
	}
	if err := e.Map.SaveJSON(path); err != nil {
		return err
	}
	e.FilePath = path
	e.Modified = false
	return nil
}

func (e *Editor) brushValue() uint8 {
	switch e.Tool {
	case ToolWall:
		return maplib.CostWall
	case ToolCost:
		return e.BrushCost
	case ToolTerrain:
		return e.Terrain.Cost()
	}
	return maplib.CostOpen
}

// Paint applies the current tool to the 3×3 block around c. It reports
// whether any cell changed.
func (e *Editor) Paint(c grid.Cell) bool {
	return e.record(e.Map.Brush(c, e.brushValue()))
}

// Demo replaces the map with a demo layout as one undoable action
func (e *Editor) Demo(seed int64, density float64) bool {
	return e.replace(maplib.Demo(e.Map.Width(), e.Map.Height(), seed, density))
}

// Clear opens every cell as one undoable action
func (e *Editor) Clear() bool {
	return e.replace(grid.New(maplib.CostOpen, e.Map.Width(), e.Map.Height()))
}

func (e *Editor) replace(g *grid.Grid[uint8]) bool {
	var changes []maplib.Change
	for i, v := range g.Data {
		if ch, ok := e.Map.SetCost(g.CellAt(i), v); ok {
			changes = append(changes, ch)
		}
	}
	return e.record(changes)
}

func (e *Editor) record(changes []maplib.Change) bool {
	if len(changes) == 0 {
		return false
	}
	e.UndoStack = append(e.UndoStack, changes)
	e.RedoStack = nil
	e.Modified = true
	return true
}

// Undo reverts the last action
func (e *Editor) Undo() bool {
	if len(e.UndoStack) == 0 {
		return false
	}
	changes := e.UndoStack[len(e.UndoStack)-1]
	e.UndoStack = e.UndoStack[:len(e.UndoStack)-1]
	for i := len(changes) - 1; i >= 0; i-- {
		e.Map.SetCost(changes[i].Cell, changes[i].Old)
	}
	e.RedoStack = append(e.RedoStack, changes)
	e.Modified = true
	return true
}

// Redo re-applies the last undone action
func (e *Editor) Redo() bool {
	if len(e.RedoStack) == 0 {
		return false
	}
	changes := e.RedoStack[len(e.RedoStack)-1]
	e.RedoStack = e.RedoStack[:len(e.RedoStack)-1]
	for _, ch := range changes {
		e.Map.SetCost(ch.Cell, ch.New)
	}
	e.UndoStack = append(e.UndoStack, changes)
	e.Modified = true
	return true
}

// NewMap creates a fresh map
func (e *Editor) NewMap(name string, w, h int) {
	e.Map = maplib.NewCostMap(name, w, h)
	e.FilePath = ""
	e.Modified = false
	e.UndoStack = nil
	e.RedoStack = nil
}
