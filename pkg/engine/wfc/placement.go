package wfc

import (
	"sort"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
	"github.com/ill13/wfc-softrender/pkg/engine/world"
)

// PlaceLocations puts the engine's location templates on the finished grid.
//
// Templates are ordered once by how many free cells could take them, fewest
// first, and then placed greedily: each picks uniformly among the cells that
// satisfy its terrain and adjacency rules and lie at least
// MinLocationSpacing from every placed location. A template with no such
// cell is skipped. It returns every placement made so far.
func (e *Engine) PlaceLocations() ([]world.PlacedLocation, error) {
	if !e.grid.IsComplete() {
		return nil, ErrIncomplete
	}

	var free []*world.Cell
	e.grid.ForEachCell(func(_, _ int, c *world.Cell) {
		if !c.HasLocation() {
			free = append(free, c)
		}
	})

	order := make([]*catalog.LocationTemplate, len(e.locations))
	counts := make(map[*catalog.LocationTemplate]int, len(e.locations))
	for i := range e.locations {
		loc := &e.locations[i]
		order[i] = loc
		counts[loc] = len(e.validSpots(free, loc))
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] < counts[order[j]]
	})

	for _, loc := range order {
		spots := e.validSpots(free, loc)
		if len(spots) == 0 {
			e.log.Debug("location skipped", "location", loc.ID)
			continue
		}

		pick := spots[e.rng.Intn(len(spots))]
		pick.Location = loc
		e.placed = append(e.placed, world.PlacedLocation{X: pick.X, Y: pick.Y, Template: loc})
		free = removeCell(free, pick)
		e.log.Debug("location placed", "location", loc.ID, "x", pick.X, "y", pick.Y)
	}

	return e.Placed(), nil
}

func (e *Engine) validSpots(free []*world.Cell, loc *catalog.LocationTemplate) []*world.Cell {
	var spots []*world.Cell
	for _, c := range free {
		if e.isValidSpot(c, loc) {
			spots = append(spots, c)
		}
	}
	return spots
}

// isValidSpot checks a single cell against the location's rules and the
// spacing to locations already placed.
func (e *Engine) isValidSpot(c *world.Cell, loc *catalog.LocationTemplate) bool {
	if c.HasLocation() {
		return false
	}
	if !loc.AllowsTerrain(c.Terrain) {
		return false
	}

	if len(loc.Rules.Adjacent) > 0 {
		around := e.grid.Neighbors(c.X, c.Y)
		for _, required := range loc.Rules.Adjacent {
			found := false
			for _, n := range around {
				if n.Collapsed && n.Terrain == required {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}

	for _, p := range e.placed {
		if p.DistanceTo(c.X, c.Y) < MinLocationSpacing {
			return false
		}
	}
	return true
}

func removeCell(cells []*world.Cell, target *world.Cell) []*world.Cell {
	for i, c := range cells {
		if c == target {
			return append(cells[:i], cells[i+1:]...)
		}
	}
	return cells
}
