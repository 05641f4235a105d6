package world

import "github.com/ill13/wfc-softrender/pkg/engine/catalog"

// PlacedLocation records a location committed to a grid position.
type PlacedLocation struct {
	X        int
	Y        int
	Template *catalog.LocationTemplate
}

// DistanceTo returns the Manhattan distance from the placement to x, y.
func (p PlacedLocation) DistanceTo(x, y int) int {
	return ManhattanDistance(p.X, p.Y, x, y)
}

// ManhattanDistance returns |x1-x2| + |y1-y2|.
func ManhattanDistance(x1, y1, x2, y2 int) int {
	return abs(x1-x2) + abs(y1-y2)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
