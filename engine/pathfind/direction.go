package pathfind

import "fmt"

// Direction is a flow code: (dx+1) + 3*(dy+1) for the 8 compass offsets,
// DirNone for "stand still"
type Direction int8

const (
	DirNW   Direction = 0
	DirN    Direction = 1
	DirNE   Direction = 2
	DirW    Direction = 3
	DirNone Direction = 4
	DirE    Direction = 5
	DirSW   Direction = 6
	DirS    Direction = 7
	DirSE   Direction = 8
)

var dirNames = [9]string{"NW", "N", "NE", "W", "none", "E", "SW", "S", "SE"}

// DirectionTo encodes an offset with components in [-1, 1]
func DirectionTo(dx, dy int) Direction {
	return Direction((dx + 1) + 3*(dy+1))
}

// Vector decodes the offset the direction points to
func (d Direction) Vector() (dx, dy int) {
	return int(d)%3 - 1, int(d)/3 - 1
}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(dirNames) {
		return fmt.Sprintf("Direction(%d)", int8(d))
	}
	return dirNames[d]
}
