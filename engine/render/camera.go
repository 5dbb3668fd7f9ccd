package render

import (
	"math"

	"github.com/1siamBot/tileflow/engine/grid"
)

// Camera represents the viewport into the top-down world. World units are
// map cells scaled by CellSize.
type Camera struct {
	X, Y     float64 // camera center position (world coords)
	Zoom     float64 // zoom level (1.0 = one world unit per pixel)
	MinZoom  float64
	MaxZoom  float64
	ScreenW  int     // viewport width in pixels
	ScreenH  int     // viewport height in pixels
	Speed    float64 // pan speed (pixels per second)
	CellSize float64 // world units per cell

	// Map bounds for clamping, in cells
	MapWidth  int
	MapHeight int
}

// NewCamera creates a camera with default settings
func NewCamera(screenW, screenH int, cellSize float64) *Camera {
	return &Camera{
		Zoom:     1.0,
		MinZoom:  0.1,
		MaxZoom:  8.0,
		ScreenW:  screenW,
		ScreenH:  screenH,
		Speed:    500,
		CellSize: cellSize,
	}
}

// SetMapBounds sets the map size for camera clamping
func (c *Camera) SetMapBounds(w, h int) {
	c.MapWidth = w
	c.MapHeight = h
	c.clamp()
}

// Pan moves the camera by pixel delta
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clamp()
}

// SetZoom sets zoom level with clamping
func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt zooms by a factor toward a screen point
func (c *Camera) ZoomAt(factor float64, screenX, screenY int) {
	wx, wy := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom * factor)
	wx2, wy2 := c.ScreenToWorld(screenX, screenY)
	// Keep the point under the cursor stationary
	c.X += wx - wx2
	c.Y += wy - wy2
	c.clamp()
}

// CenterOn centers the camera on the middle of a cell
func (c *Camera) CenterOn(cell grid.Cell) {
	c.X = (float64(cell.X) + 0.5) * c.CellSize
	c.Y = (float64(cell.Y) + 0.5) * c.CellSize
	c.clamp()
}

// WorldToScreen converts a world position to screen pixels
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	sx := (wx-c.X)*c.Zoom + float64(c.ScreenW)/2
	sy := (wy-c.Y)*c.Zoom + float64(c.ScreenH)/2
	return sx, sy
}

// ScreenToWorld converts screen pixels to a world position
func (c *Camera) ScreenToWorld(sx, sy int) (float64, float64) {
	wx := (float64(sx)-float64(c.ScreenW)/2)/c.Zoom + c.X
	wy := (float64(sy)-float64(c.ScreenH)/2)/c.Zoom + c.Y
	return wx, wy
}

// ScreenToCell returns the cell under a screen pixel; it may be off the map
func (c *Camera) ScreenToCell(sx, sy int) grid.Cell {
	wx, wy := c.ScreenToWorld(sx, sy)
	return grid.Cell{
		X: int(math.Floor(wx / c.CellSize)),
		Y: int(math.Floor(wy / c.CellSize)),
	}
}

// CellScreenSize is the on-screen side of one cell in pixels
func (c *Camera) CellScreenSize() float64 {
	return c.CellSize * c.Zoom
}

// VisibleCellRange returns the range of cells visible on screen
func (c *Camera) VisibleCellRange(mapW, mapH int) (minX, minY, maxX, maxY int) {
	lo := c.ScreenToCell(0, 0)
	hi := c.ScreenToCell(c.ScreenW, c.ScreenH)
	minX = max(lo.X, 0)
	minY = max(lo.Y, 0)
	maxX = min(hi.X, mapW-1)
	maxY = min(hi.Y, mapH-1)
	return
}

// clamp keeps the camera center over the map
func (c *Camera) clamp() {
	if c.MapWidth <= 0 || c.MapHeight <= 0 {
		return
	}
	c.X = math.Max(0, math.Min(float64(c.MapWidth)*c.CellSize, c.X))
	c.Y = math.Max(0, math.Min(float64(c.MapHeight)*c.CellSize, c.Y))
}
