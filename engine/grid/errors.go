package grid

import "fmt"

// outOfBounds is the panic value for a cell outside the grid
type outOfBounds struct {
	Cell          Cell
	Width, Height int
}

func (e outOfBounds) Error() string {
	return fmt.Sprintf("grid: cell (%d,%d) outside %dx%d", e.Cell.X, e.Cell.Y, e.Width, e.Height)
}
