package catalog

import "fmt"

// Placement selects where a terrain template is stamped on the grid.
type Placement string

const (
	PlaceCenter  Placement = "center"
	PlaceTopLeft Placement = "top_left"
	PlaceAny     Placement = "any"
)

// TerrainTemplate is a hand-authored rectangular terrain patch.
// Empty strings in Pattern are holes that leave the grid untouched.
type TerrainTemplate struct {
	ID        string
	Weight    float64
	Placement Placement
	Pattern   [][]string
}

// Size returns the template's width (length of its first row) and height.
func (t *TerrainTemplate) Size() (width, height int) {
	if len(t.Pattern) == 0 {
		return 0, 0
	}
	return len(t.Pattern[0]), len(t.Pattern)
}

// ValidateTemplates checks that every terrain referenced by a pattern exists
// in the catalog and that weights are positive.
func ValidateTemplates(c *Catalog, templates []TerrainTemplate) error {
	for _, t := range templates {
		if !(t.Weight > 0) {
			return fmt.Errorf("template %q weight %v: %w", t.ID, t.Weight, ErrInvalidWeight)
		}
		for y, row := range t.Pattern {
			for x, id := range row {
				if id == "" {
					continue
				}
				if !c.Has(id) {
					return fmt.Errorf("template %q at (%d,%d) terrain %q: %w", t.ID, x, y, id, ErrUnknownID)
				}
			}
		}
	}
	return nil
}
