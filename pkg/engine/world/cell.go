// Package world provides the 2D terrain grid the generator works on: cells
// with their remaining possibilities, the grid itself, and placed locations.
package world

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
)

// Cell is one grid position.
//
// A cell starts with every terrain id as a possibility. Possibilities only
// shrink until the grid is rebuilt. A collapsed cell has exactly one
// possibility, equal to Terrain.
type Cell struct {
	X int
	Y int

	Possibilities mapset.Set[string]
	Collapsed     bool
	Terrain       string

	// Color is a display value drawn when the cell collapsed. It has no
	// effect on generation.
	Color string

	// Location is set at most once, by location placement.
	Location *catalog.LocationTemplate
}

// NewCell creates an uncollapsed cell at x, y allowing every id in ids.
func NewCell(x, y int, ids []string) *Cell {
	p := mapset.New[string]()
	for _, id := range ids {
		p.Put(id)
	}
	return &Cell{X: x, Y: y, Possibilities: p}
}

// Entropy is the number of remaining possibilities.
func (c *Cell) Entropy() int {
	return c.Possibilities.Size()
}

// IsContradiction reports whether no possibility is left.
func (c *Cell) IsContradiction() bool {
	return c.Possibilities.Size() == 0
}

// Allows reports whether id is still a possibility.
func (c *Cell) Allows(id string) bool {
	return c.Possibilities.Has(id)
}

// Collapse commits the cell to id.
func (c *Cell) Collapse(id, color string) {
	p := mapset.New[string]()
	p.Put(id)
	c.Possibilities = p
	c.Terrain = id
	c.Color = color
	c.Collapsed = true
}

// Restrict drops every possibility not in keep and reports whether the set
// changed. Ids in keep that are no longer possible are ignored, so the set
// never grows.
func (c *Cell) Restrict(keep []string) bool {
	next := mapset.New[string]()
	for _, id := range keep {
		if c.Possibilities.Has(id) {
			next.Put(id)
		}
	}
	if next.Size() == c.Possibilities.Size() {
		return false
	}
	c.Possibilities = next
	return true
}

// Ordered returns the remaining possibilities in the order of ids.
func (c *Cell) Ordered(ids []string) []string {
	out := make([]string, 0, c.Possibilities.Size())
	for _, id := range ids {
		if c.Possibilities.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// HasLocation reports whether a location was placed on this cell.
func (c *Cell) HasLocation() bool {
	return c.Location != nil
}
