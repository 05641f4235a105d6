package world

import "fmt"

// Grid is a fixed-size matrix of cells addressed by x (column) and y (row).
type Grid struct {
	cells  [][]*Cell
	width  int
	height int
}

// CellState is a read-only copy of a cell handed to renderers and storage.
type CellState struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Terrain   string `json:"terrain,omitempty"`
	Color     string `json:"color,omitempty"`
	Collapsed bool   `json:"collapsed"`
	Entropy   int    `json:"entropy"`
	Location  string `json:"location,omitempty"`
}

// NewGrid creates a width x height grid where every cell allows every id.
func NewGrid(width, height int, ids []string) *Grid {
	g := &Grid{}
	g.Build(width, height, ids)
	return g
}

// Width returns the number of columns in the grid
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows in the grid
func (g *Grid) Height() int {
	return g.height
}

// Size returns the number of cells.
func (g *Grid) Size() int {
	return g.width * g.height
}

// IsValidPosition checks if an x/y position is within grid bounds
func (g *Grid) IsValidPosition(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// GetCell returns the cell at the given position, or nil if out of bounds
func (g *Grid) GetCell(x, y int) *Cell {
	if !g.IsValidPosition(x, y) || g.cells == nil {
		return nil
	}
	return g.cells[y][x]
}

// GetCellRelative returns the cell adjacent to c in the given direction
func (g *Grid) GetCellRelative(c *Cell, dir Direction) *Cell {
	if c == nil || !dir.IsValid() {
		return nil
	}
	dx, dy := dir.Delta()
	return g.GetCell(c.X+dx, c.Y+dy)
}

// Neighbors returns the in-bounds orthogonal neighbours of x, y in the order
// west, east, north, south. Out-of-grid positions are left out, and a
// position off the grid has none.
func (g *Grid) Neighbors(x, y int) []*Cell {
	c := g.GetCell(x, y)
	if c == nil {
		return nil
	}
	out := make([]*Cell, 0, len(neighborOrder))
	for _, dir := range neighborOrder {
		if n := g.GetCellRelative(c, dir); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Build (re)initializes the grid with the given dimensions. Every cell is
// uncollapsed, allows every id and carries no location.
func (g *Grid) Build(width, height int, ids []string) {
	if width <= 0 || height <= 0 {
		panic("Grid dimensions must be positive")
	}

	g.width = width
	g.height = height
	g.cells = make([][]*Cell, height)

	for y := 0; y < height; y++ {
		g.cells[y] = make([]*Cell, width)
		for x := 0; x < width; x++ {
			g.cells[y][x] = NewCell(x, y, ids)
		}
	}
}

// ForEachCell iterates over all cells row by row, calling fn for each
func (g *Grid) ForEachCell(fn func(x, y int, cell *Cell)) {
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			fn(x, y, g.cells[y][x])
		}
	}
}

// IsComplete reports whether every cell is collapsed.
func (g *Grid) IsComplete() bool {
	for _, row := range g.cells {
		for _, c := range row {
			if !c.Collapsed {
				return false
			}
		}
	}
	return true
}

// CollapsedCount returns the number of collapsed cells.
func (g *Grid) CollapsedCount() int {
	n := 0
	g.ForEachCell(func(_, _ int, c *Cell) {
		if c.Collapsed {
			n++
		}
	})
	return n
}

// TotalEntropy sums the possibility counts of the uncollapsed cells.
func (g *Grid) TotalEntropy() int {
	n := 0
	g.ForEachCell(func(_, _ int, c *Cell) {
		if !c.Collapsed {
			n += c.Entropy()
		}
	})
	return n
}

// TerrainCounts returns how many collapsed cells carry each terrain id.
func (g *Grid) TerrainCounts() map[string]int {
	counts := make(map[string]int)
	g.ForEachCell(func(_, _ int, c *Cell) {
		if c.Collapsed {
			counts[c.Terrain]++
		}
	})
	return counts
}

// Validate checks the cell invariants and returns an error description or
// empty string if valid.
func (g *Grid) Validate() string {
	if g.width <= 0 || g.height <= 0 {
		return "Grid has invalid dimensions"
	}

	problem := ""
	g.ForEachCell(func(x, y int, c *Cell) {
		if problem != "" {
			return
		}
		switch {
		case c.IsContradiction():
			problem = fmt.Sprintf("Cell (%d,%d) has no possibilities", x, y)
		case c.Collapsed && c.Entropy() != 1:
			problem = fmt.Sprintf("Cell (%d,%d) is collapsed with %d possibilities", x, y, c.Entropy())
		case c.Collapsed && !c.Allows(c.Terrain):
			problem = fmt.Sprintf("Cell (%d,%d) terrain %q is not among its possibilities", x, y, c.Terrain)
		case !c.Collapsed && c.Entropy() == 1:
			problem = fmt.Sprintf("Cell (%d,%d) has a single possibility but is not collapsed", x, y)
		case !c.Collapsed && c.HasLocation():
			problem = fmt.Sprintf("Cell (%d,%d) has a location but is not collapsed", x, y)
		}
	})
	return problem
}

// Snapshot returns value copies of every cell, row by row.
func (g *Grid) Snapshot() []CellState {
	out := make([]CellState, 0, g.Size())
	g.ForEachCell(func(x, y int, c *Cell) {
		s := CellState{
			X:         x,
			Y:         y,
			Collapsed: c.Collapsed,
			Entropy:   c.Entropy(),
		}
		if c.Collapsed {
			s.Terrain = c.Terrain
			s.Color = c.Color
		}
		if c.HasLocation() {
			s.Location = c.Location.ID
		}
		out = append(out, s)
	})
	return out
}
