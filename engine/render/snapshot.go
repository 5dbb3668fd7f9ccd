package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Upscale enlarges a one-pixel-per-cell image so each cell covers scale×scale
// pixels, keeping cell edges sharp
func Upscale(src image.Image, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// EncodeSnapshot writes src upscaled as PNG
func EncodeSnapshot(w io.Writer, src image.Image, scale int) error {
	return png.Encode(w, Upscale(src, scale))
}

// SaveSnapshot writes src upscaled to a PNG file
func SaveSnapshot(path string, src image.Image, scale int) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot %s: %w", path, err)
	}
	defer out.Close()
	if err := EncodeSnapshot(out, src, scale); err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", path, err)
	}
	return nil
}
