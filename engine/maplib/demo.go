package maplib

import (
	"math"
	"math/rand"

	"github.com/1siamBot/tileflow/engine/grid"
)

const demoSmoothPasses = 4

// Demo generates a reproducible cost grid: random seed cells grown into soft
// obstacle blobs by repeated 3×3 smoothing. density is the share of seed cells.
// Blob centres saturate into walls, their rims into expensive ground.
func Demo(width, height int, seed int64, density float64) *grid.Grid[uint8] {
	rng := rand.New(rand.NewSource(seed))
	field := make([]float64, width*height)
	for i := range field {
		if rng.Float64() < density {
			field[i] = 1
		}
	}

	// In place, so each pass already sees the cells it updated
	for pass := 0; pass < demoSmoothPasses; pass++ {
		for y := 1; y < height-1; y++ {
			for x := 1; x < width-1; x++ {
				acc := 0.0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						acc += field[(y+dy)*width+x+dx]
					}
				}
				field[y*width+x] = 1.7 * math.Pow(acc/9, 1.2)
			}
		}
	}

	out := grid.New(CostOpen, width, height)
	for i, v := range field {
		out.Data[i] = uint8(math.Max(1, math.Min(255, v*255)))
	}
	return out
}
