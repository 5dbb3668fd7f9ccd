package render

import (
	"image"
	"image/color"
	"math"

	"github.com/1siamBot/tileflow/engine/grid"
	"github.com/1siamBot/tileflow/engine/pathfind"
)

// Overlay colors
var (
	ColorStart    = color.RGBA{0, 255, 0, 255}
	ColorTarget   = color.RGBA{255, 255, 0, 255}
	ColorOpen     = color.RGBA{255, 0, 255, 255}
	ColorPath     = color.RGBA{0, 0, 255, 128}
	ColorQueued   = color.RGBA{128, 26, 128, 128}
	ColorWaypoint = color.RGBA{255, 255, 255, 255}
	ColorCurrent  = color.RGBA{255, 0, 255, 128}
	ColorFrontier = color.RGBA{0, 51, 255, 128}
)

// ramp maps v in [0,1] to a brightness with an acceleration exponent
func ramp(v, accel float64) uint8 {
	x := (1 - math.Exp(-math.Pow(v, accel))) / 0.63
	return uint8(math.Max(0, math.Min(255, x*255)))
}

func heat(v float64) color.RGBA {
	return color.RGBA{ramp(v, 0.5), ramp(v, 1.1), ramp(v, 2.0), 255}
}

// CostColor shades a cost relative to the map's lowest and highest cost
func CostColor(v, lo, hi uint8) color.RGBA {
	if hi <= lo || v <= lo {
		return heat(0)
	}
	v = min(v, hi)
	return heat(float64(v-lo) / float64(hi-lo))
}

// IntegrationColor shades an integration value. Values at or above hi,
// including the sentinel, are drawn at full brightness.
func IntegrationColor(v, lo, hi int32) color.RGBA {
	x := 1.0
	if hi > lo {
		x = float64(v-lo) / float64(hi-lo)
	}
	if x > 1 {
		x = 1
	} else {
		x *= 0.8
	}
	return heat(x)
}

// blend draws c over the pixel at (x, y) with c's alpha
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{x, y}).In(img.Rect) {
		return
	}
	if c.A == 255 {
		img.SetRGBA(x, y, c)
		return
	}
	dst := img.RGBAAt(x, y)
	a := uint32(c.A)
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(255-a)) / 255)
	}
	img.SetRGBA(x, y, color.RGBA{mix(c.R, dst.R), mix(c.G, dst.G), mix(c.B, dst.B), 255})
}

// DrawCost paints one pixel per cell
func DrawCost(img *image.RGBA, cost *grid.Grid[uint8]) {
	lo, hi := uint8(255), uint8(0)
	for _, v := range cost.Data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	for i, v := range cost.Data {
		c := cost.CellAt(i)
		img.SetRGBA(c.X, c.Y, CostColor(v, lo, hi))
	}
}

// DrawSearch marks a search's endpoints, its open cells while expanding and
// its path once done, with the line-of-sight waypoints on top
func DrawSearch(img *image.RGBA, s *pathfind.Search) {
	switch s.State() {
	case pathfind.SearchExpanding:
		for _, c := range s.OpenCells() {
			blend(img, c.X, c.Y, ColorOpen)
		}
	case pathfind.SearchDone:
		for _, c := range s.Path() {
			blend(img, c.X, c.Y, ColorPath)
		}
		for _, c := range pathfind.SmoothPath(s.CostGrid(), s.Path()) {
			img.SetRGBA(c.X, c.Y, ColorWaypoint)
		}
	}
	from, to := s.From(), s.To()
	blend(img, from.X, from.Y, ColorStart)
	blend(img, to.X, to.Y, ColorTarget)
}

// DrawComposed paints the integration of every computed zone, shaded over the
// range of the whole table
func DrawComposed(img *image.RGBA, c *pathfind.Composed) {
	lo, hi, ok := c.IntegrationRange()
	if !ok {
		return
	}
	t := c.Tiling
	for _, z := range c.Zones() {
		f := c.Field(z)
		for i, v := range f.Integration.Data {
			g := t.ToGlobal(z, f.Integration.CellAt(i))
			if g.X >= t.Width || g.Y >= t.Height {
				continue
			}
			img.SetRGBA(g.X, g.Y, IntegrationColor(v, lo, hi))
		}
	}
}

// DrawZone outlines a zone, clipped to the map
func DrawZone(img *image.RGBA, t pathfind.Tiling, z pathfind.Zone, c color.RGBA) {
	lo, hi := t.Min(z), t.Max(z)
	hi.X = min(hi.X, t.Width-1)
	hi.Y = min(hi.Y, t.Height-1)
	for x := lo.X; x <= hi.X; x++ {
		blend(img, x, lo.Y, c)
		blend(img, x, hi.Y, c)
	}
	for y := lo.Y; y <= hi.Y; y++ {
		blend(img, lo.X, y, c)
		blend(img, hi.X, y, c)
	}
}

// DrawHierarchical paints a hierarchical request in its current phase
func DrawHierarchical(img *image.RGBA, h *pathfind.Hierarchical) {
	switch h.Phase() {
	case pathfind.StitchSearching, pathfind.StitchRouteToTiles:
		DrawSearch(img, h.Search())
		return
	case pathfind.StitchUnreachable:
		return
	}

	DrawComposed(img, h.Table())
	if h.Phase() != pathfind.StitchComputingTiles {
		return
	}
	for _, z := range h.Route() {
		DrawZone(img, h.Tiling(), z, ColorQueued)
	}
	if z, f, ok := h.Current(); ok {
		DrawZone(img, h.Tiling(), z, ColorCurrent)
		for _, c := range f.Frontier() {
			g := h.Tiling().ToGlobal(z, c)
			blend(img, g.X, g.Y, ColorFrontier)
		}
	}
}

// MapImage renders the cost map with every request of the computer on top,
// one pixel per cell
func MapImage(cost *grid.Grid[uint8], comp *pathfind.Computer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cost.Width, cost.Height))
	DrawCost(img, cost)
	if comp == nil {
		return img
	}
	for _, r := range comp.Requests() {
		if r.Hierarchical != nil {
			DrawHierarchical(img, r.Hierarchical)
		} else {
			DrawSearch(img, r.Search)
		}
	}
	return img
}
