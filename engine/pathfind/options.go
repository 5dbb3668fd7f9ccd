package pathfind

import (
	"errors"
	"fmt"
	"math"

	"github.com/1siamBot/tileflow/engine/grid"
)

// CostWall marks an impassable cell in a cost grid
const CostWall uint8 = 255

// wallWeight replaces the cost of a wall cell when walls are traversable
const wallWeight = 255000

// MaxSentinel leaves room for one diagonal step at the highest cost
const MaxSentinel = math.MaxInt32 - int32(CostWall)*grid.EdgeDiagonal

var (
	// ErrInvalidTileSize is returned for tiles smaller than 2 cells per side.
	ErrInvalidTileSize = errors.New("pathfind: tile size must be at least 2")
	// ErrInvalidSentinel is returned for a sentinel outside (0, MaxSentinel].
	ErrInvalidSentinel = errors.New("pathfind: sentinel out of range")
	// ErrOutOfBounds is returned when a request names a cell outside the cost grid.
	ErrOutOfBounds = errors.New("pathfind: cell outside cost grid")
	// ErrNoPath is returned by FindPath when the target cannot be reached.
	ErrNoPath = errors.New("pathfind: no path")
)

// Options configures searches and fields. The zero value is not usable;
// start from DefaultOptions.
type Options struct {
	// TileSize is the side of a tile in cells. Adjacent tiles share one
	// row or column of cells.
	TileSize int
	// Sentinel is the integration value of an unreached cell
	Sentinel int32
	// HeuristicWeight multiplies h in f = g + w*h
	HeuristicWeight int
	// WallsBlock makes the coarse search skip cost-255 cells. When false they
	// are crossed at a near-infinite weight.
	WallsBlock bool
}

// DefaultOptions returns the reference configuration
func DefaultOptions() Options {
	return Options{
		TileSize:        100,
		Sentinel:        math.MaxInt32 / 2,
		HeuristicWeight: 2,
		WallsBlock:      true,
	}
}

// Validate checks option ranges
func (o Options) Validate() error {
	if o.TileSize < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidTileSize, o.TileSize)
	}
	if o.Sentinel <= 0 || o.Sentinel > MaxSentinel {
		return fmt.Errorf("%w: got %d", ErrInvalidSentinel, o.Sentinel)
	}
	return nil
}
