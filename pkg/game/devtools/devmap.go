package devtools

import (
	"github.com/ill13/wfc-softrender/pkg/engine/world"
	"github.com/ill13/wfc-softrender/pkg/game/theme"
)

const (
	devBandHeight = 3
	devMargin     = 3
)

// BuildDevMap lays out a hand-collapsed map showing every terrain of the
// theme as a horizontal band, using each of its colours in turn, with every
// location dropped on the first band it is allowed on. Renderers and the
// dump tools can be checked against it without running the collapse.
func BuildDevMap(th *theme.Theme) (MapInfo, error) {
	cat, err := th.Catalog()
	if err != nil {
		return MapInfo{}, err
	}
	ids := cat.IDs()
	locations := th.LocationTemplates()

	width := (len(locations) + 1) * (devMargin + 1)
	if width < 16 {
		width = 16
	}
	grid := world.NewGrid(width, len(ids)*devBandHeight, ids)

	// Bands of terrain, cycling through the terrain's colours
	for band, id := range ids {
		colors := cat.Colors(id)
		for dy := 0; dy < devBandHeight; dy++ {
			for x := 0; x < width; x++ {
				color := ""
				if len(colors) > 0 {
					color = colors[x%len(colors)]
				}
				grid.GetCell(x, band*devBandHeight+dy).Collapse(id, color)
			}
		}
	}

	// Locations on the middle row of their first allowed band
	var placed []world.PlacedLocation
	for i := range locations {
		loc := &locations[i]
		for band, id := range ids {
			if !loc.AllowsTerrain(id) {
				continue
			}
			x := devMargin/2 + i*(devMargin+1)
			y := band*devBandHeight + devBandHeight/2
			cell := grid.GetCell(x, y)
			if cell == nil {
				break
			}
			cell.Location = loc
			placed = append(placed, world.PlacedLocation{X: x, Y: y, Template: loc})
			break
		}
	}

	return MapInfo{
		Name:    "Dev Test Map",
		Theme:   th.Name,
		Grid:    grid,
		Catalog: cat,
		Placed:  placed,
	}, nil
}
