package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/1siamBot/tileflow/engine/grid"
	"github.com/1siamBot/tileflow/engine/pathfind"
)

// minArrowCell is the smallest on-screen cell, in pixels, that gets an arrow
const minArrowCell = 10

var (
	colorArrow  = color.RGBA{0, 0, 0, 160}
	colorAgent  = color.RGBA{255, 60, 60, 255}
	colorCursor = color.RGBA{0, 255, 51, 128}
)

// Overlay draws a one-pixel-per-cell map image scaled through a camera
type Overlay struct {
	Camera *Camera
	img    *ebiten.Image
}

// NewOverlay creates an overlay for a map of w×h cells
func NewOverlay(cam *Camera, w, h int) *Overlay {
	return &Overlay{Camera: cam, img: ebiten.NewImage(w, h)}
}

// Upload replaces the overlay pixels; src must match the map size
func (o *Overlay) Upload(src *image.RGBA) {
	o.img.WritePixels(src.Pix)
}

// DrawMap draws the uploaded map image
func (o *Overlay) DrawMap(screen *ebiten.Image) {
	s := o.Camera.CellScreenSize()
	x, y := o.Camera.WorldToScreen(0, 0)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(o.img, op)
}

// DrawArrows draws the flow direction of every visible cell of a composed
// field once cells are large enough on screen
func (o *Overlay) DrawArrows(screen *ebiten.Image, c *pathfind.Composed) {
	cam := o.Camera
	s := cam.CellScreenSize()
	if c == nil || s < minArrowCell {
		return
	}
	minX, minY, maxX, maxY := cam.VisibleCellRange(c.Tiling.Width, c.Tiling.Height)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d, ok := c.DirectionAt(grid.Cell{X: x, Y: y})
			if !ok || d == pathfind.DirNone {
				continue
			}
			dx, dy := d.Vector()
			cx, cy := cam.WorldToScreen((float64(x)+0.5)*cam.CellSize, (float64(y)+0.5)*cam.CellSize)
			ex := cx + float64(dx)*s*0.4
			ey := cy + float64(dy)*s*0.4
			vector.StrokeLine(screen, float32(cx), float32(cy), float32(ex), float32(ey), 1, colorArrow, false)
			vector.DrawFilledRect(screen, float32(ex)-1, float32(ey)-1, 2, 2, colorArrow, false)
		}
	}
}

// DrawAgents draws every agent as a small square
func (o *Overlay) DrawAgents(screen *ebiten.Image, agents []*pathfind.Agent) {
	size := float32(max(2, o.Camera.Zoom*2))
	for _, a := range agents {
		x, y := o.Camera.WorldToScreen(a.X, a.Y)
		vector.DrawFilledRect(screen, float32(x)-size/2, float32(y)-size/2, size, size, colorAgent, false)
	}
}

// DrawCursor highlights the 3×3 brush block around a cell
func (o *Overlay) DrawCursor(screen *ebiten.Image, cell grid.Cell) {
	s := o.Camera.CellScreenSize()
	x, y := o.Camera.WorldToScreen(float64(cell.X-1)*o.Camera.CellSize, float64(cell.Y-1)*o.Camera.CellSize)
	vector.StrokeRect(screen, float32(x), float32(y), float32(3*s), float32(3*s), 1, colorCursor, false)
}

// DrawMarker fills one cell, used for the pending start cell
func (o *Overlay) DrawMarker(screen *ebiten.Image, cell grid.Cell, c color.RGBA) {
	s := o.Camera.CellScreenSize()
	x, y := o.Camera.WorldToScreen(float64(cell.X)*o.Camera.CellSize, float64(cell.Y)*o.Camera.CellSize)
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(s), float32(s), c, false)
}
