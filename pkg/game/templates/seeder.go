// Package templates stamps hand-authored terrain patterns onto a fresh grid
// before generation starts.
package templates

import (
	"math/rand"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
	"github.com/ill13/wfc-softrender/pkg/engine/world"
)

// Seeder picks one or two weighted patterns per grid and commits their
// cells. It satisfies wfc.Seeder.
type Seeder struct {
	catalog   *catalog.Catalog
	templates []catalog.TerrainTemplate
}

// New returns a seeder for the given patterns. The patterns must only name
// terrains known to c.
func New(c *catalog.Catalog, templates []catalog.TerrainTemplate) (*Seeder, error) {
	if err := catalog.ValidateTemplates(c, templates); err != nil {
		return nil, err
	}
	return &Seeder{
		catalog:   c,
		templates: append([]catalog.TerrainTemplate(nil), templates...),
	}, nil
}

// Seed applies rng.Intn(2)+1 weighted picks (the same pattern may come up
// twice) and returns the ids of the applied patterns in order.
func (s *Seeder) Seed(g *world.Grid, rng *rand.Rand) []string {
	if len(s.templates) == 0 {
		return nil
	}

	var applied []string
	n := rng.Intn(2) + 1
	for i := 0; i < n; i++ {
		t := s.pick(rng)
		if s.apply(g, t, rng) {
			applied = append(applied, t.ID)
		}
	}
	return applied
}

func (s *Seeder) pick(rng *rand.Rand) *catalog.TerrainTemplate {
	total := 0.0
	for _, t := range s.templates {
		total += t.Weight
	}
	r := rng.Float64() * total
	for i := range s.templates {
		r -= s.templates[i].Weight
		if r <= 0 {
			return &s.templates[i]
		}
	}
	return &s.templates[0]
}

// Position returns the top-left corner at which t is stamped on a width x
// height grid, clamped so the pattern starts inside the grid.
func Position(t *catalog.TerrainTemplate, width, height int, rng *rand.Rand) (int, int) {
	tw, th := t.Size()
	if tw == 0 || th == 0 {
		return 0, 0
	}

	var x, y int
	switch t.Placement {
	case catalog.PlaceCenter:
		x = (width - tw) / 2
		y = (height - th) / 2
	case catalog.PlaceTopLeft:
		x, y = 0, 0
	default:
		x = randUpTo(rng, width-tw)
		y = randUpTo(rng, height-th)
	}
	return clamp(x, width-tw), clamp(y, height-th)
}

// apply commits the pattern's cells. Holes and cells off the grid are
// skipped. It reports whether the pattern had any content.
func (s *Seeder) apply(g *world.Grid, t *catalog.TerrainTemplate, rng *rand.Rand) bool {
	tw, th := t.Size()
	if tw == 0 || th == 0 {
		return false
	}

	startX, startY := Position(t, g.Width(), g.Height(), rng)
	for dy, row := range t.Pattern {
		for dx, id := range row {
			if id == "" {
				continue
			}
			c := g.GetCell(startX+dx, startY+dy)
			if c == nil {
				continue
			}
			c.Collapse(id, s.color(id, rng))
		}
	}
	return true
}

func (s *Seeder) color(id string, rng *rand.Rand) string {
	colors := s.catalog.Colors(id)
	if len(colors) == 0 {
		return ""
	}
	return colors[rng.Intn(len(colors))]
}

// randUpTo returns a uniform value in [0, limit], or 0 when limit is negative.
func randUpTo(rng *rand.Rand, limit int) int {
	if limit < 0 {
		return 0
	}
	return rng.Intn(limit + 1)
}

func clamp(v, limit int) int {
	if v > limit {
		v = limit
	}
	if v < 0 {
		v = 0
	}
	return v
}
