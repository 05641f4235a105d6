package renderer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/leonelquinteros/gotext"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
	"github.com/ill13/wfc-softrender/pkg/engine/world"
	"github.com/ill13/wfc-softrender/pkg/game/state"
)

// OpenCellColor is drawn for cells that have not collapsed yet.
const OpenCellColor = "#111111"

// ParseHexColor parses "#rgb" or "#rrggbb" (the leading # is optional).
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// CellColor returns the display colour of a cell as hex.
func CellColor(c *world.Cell) string {
	if c == nil || !c.Collapsed || c.Color == "" {
		return OpenCellColor
	}
	return c.Color
}

// LegendEntry is one terrain in a map legend.
type LegendEntry struct {
	ID    string
	Label string
	Color string
	Count int
}

// Legend lists the catalog's terrains in declaration order with their first
// colour and how many cells of the grid carry them.
func Legend(cat *catalog.Catalog, g *world.Grid) []LegendEntry {
	counts := map[string]int{}
	if g != nil {
		counts = g.TerrainCounts()
	}
	entries := make([]LegendEntry, 0, cat.Len())
	for _, id := range cat.IDs() {
		c := OpenCellColor
		if colors := cat.Colors(id); len(colors) > 0 {
			c = colors[0]
		}
		entries = append(entries, LegendEntry{ID: id, Label: cat.Label(id), Color: c, Count: counts[id]})
	}
	return entries
}

// Progress returns the collapsed fraction of g in [0, 1].
func Progress(g *world.Grid) float64 {
	if g == nil || g.Size() == 0 {
		return 0
	}
	return float64(g.CollapsedCount()) / float64(g.Size())
}

// StatusLine summarises the session: name, progress, steps and restarts.
// It must not be called while a run is in flight on another goroutine.
func StatusLine(s *state.Session) string {
	stats := s.Engine().Stats()
	g := s.Grid()
	return gotext.Get("%s  %d%%  %s cells  %s steps  %s",
		s.Name(),
		int(Progress(g)*100),
		humanize.Comma(int64(g.Size())),
		humanize.Comma(int64(stats.Steps)),
		english.Plural(stats.Restarts, "restart", ""),
	)
}
