// Package devtools provides developer tools for testing and debugging.
package devtools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
	"github.com/ill13/wfc-softrender/pkg/engine/wfc"
	"github.com/ill13/wfc-softrender/pkg/engine/world"
	"github.com/ill13/wfc-softrender/pkg/game/generator"
	"github.com/ill13/wfc-softrender/pkg/game/state"
)

const mapDumpFilename = "map.txt"

// MapInfo is everything a dump shows. Grid may be partially collapsed.
type MapInfo struct {
	Name      string
	Seed      int64
	Theme     string
	Grid      *world.Grid
	Catalog   *catalog.Catalog
	Placed    []world.PlacedLocation
	Templates []string
	Stats     wfc.Stats
}

// InfoFromResult collects the dump fields of a finished map.
func InfoFromResult(res *generator.Result) MapInfo {
	return MapInfo{
		Name:      res.Name,
		Seed:      res.Seed,
		Theme:     res.Theme,
		Grid:      res.Grid,
		Catalog:   res.Catalog,
		Placed:    res.Placed,
		Templates: res.Templates,
		Stats:     res.Stats,
	}
}

// InfoFromSession collects the dump fields of a session's current map,
// finished or not. It must not be called while a run is in flight.
func InfoFromSession(s *state.Session) MapInfo {
	if res := s.Result(); res != nil {
		return InfoFromResult(res)
	}
	e := s.Engine()
	return MapInfo{
		Name:      s.Name(),
		Seed:      e.Seed(),
		Theme:     s.Theme(),
		Grid:      e.Grid(),
		Catalog:   e.Catalog(),
		Placed:    e.Placed(),
		Templates: e.AppliedTemplates(),
		Stats:     e.Stats(),
	}
}

// terrainSymbols assigns each terrain a single printable rune: the first
// unused letter of its id, falling back to digits and punctuation.
func terrainSymbols(c *catalog.Catalog) map[string]rune {
	used := map[rune]bool{'?': true, '@': true}
	symbols := make(map[string]rune, c.Len())
	spare := []rune("0123456789%&*+=~^")

	for _, id := range c.IDs() {
		var sym rune
		for _, r := range strings.ToLower(id) + strings.ToUpper(id) {
			if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' {
				if !used[r] {
					sym = r
					break
				}
			}
		}
		for sym == 0 && len(spare) > 0 {
			if !used[spare[0]] {
				sym = spare[0]
			}
			spare = spare[1:]
		}
		if sym == 0 {
			sym = '#'
		}
		used[sym] = true
		symbols[id] = sym
	}
	return symbols
}

// writeMapGrid writes one row of symbols per grid row. Open cells are '?'
// and cells with a location '@' when withLocations is set.
func writeMapGrid(w io.Writer, g *world.Grid, symbols map[string]rune, withLocations bool) {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			cell := g.GetCell(x, y)
			switch {
			case withLocations && cell.HasLocation():
				fmt.Fprint(w, "@")
			case !cell.Collapsed:
				fmt.Fprint(w, "?")
			default:
				fmt.Fprintf(w, "%c", symbols[cell.Terrain])
			}
		}
		fmt.Fprintln(w)
	}
}

// writeEntropyGrid writes the possibility count of every open cell, '.' for
// collapsed cells and '+' for counts above nine.
func writeEntropyGrid(w io.Writer, g *world.Grid) {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			cell := g.GetCell(x, y)
			n := cell.Entropy()
			switch {
			case cell.Collapsed:
				fmt.Fprint(w, ".")
			case n > 9:
				fmt.Fprint(w, "+")
			default:
				fmt.Fprintf(w, "%d", n)
			}
		}
		fmt.Fprintln(w)
	}
}

// WriteMapDump writes a debug dump: metadata, legend, terrain map with and
// without locations, possibility counts and the placed locations.
// Format is human-readable (sections, key: value, consistent structure).
func WriteMapDump(w io.Writer, m MapInfo) error {
	if m.Grid == nil || m.Catalog == nil {
		return fmt.Errorf("no grid")
	}
	g := m.Grid
	symbols := terrainSymbols(m.Catalog)

	// --- Metadata ---
	fmt.Fprintln(w, "=== MAP DUMP DEBUG (terrain, entropy, locations) ===")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "--- Metadata ---")
	fmt.Fprintf(w, "name: %q\n", m.Name)
	fmt.Fprintf(w, "seed: %d\n", m.Seed)
	fmt.Fprintf(w, "theme: %s\n", m.Theme)
	fmt.Fprintf(w, "grid_width: %d\n", g.Width())
	fmt.Fprintf(w, "grid_height: %d\n", g.Height())
	fmt.Fprintf(w, "coordinate_system: x,y (0-based, x=horizontal, y=vertical)\n")
	fmt.Fprintf(w, "complete: %v\n", g.IsComplete())
	fmt.Fprintf(w, "collapsed: %d/%d\n", g.CollapsedCount(), g.Size())
	fmt.Fprintf(w, "remaining_entropy: %d\n", g.TotalEntropy())
	fmt.Fprintf(w, "steps: %d\n", m.Stats.Steps)
	fmt.Fprintf(w, "restarts: %d\n", m.Stats.Restarts)
	fmt.Fprintf(w, "templates: %s\n", strings.Join(m.Templates, ","))
	if msg := g.Validate(); msg != "" {
		fmt.Fprintf(w, "invariant_violation: %s\n", msg)
	}
	fmt.Fprintln(w, "")

	// --- Legend ---
	fmt.Fprintln(w, "--- Legend (cell symbols) ---")
	var legend []string
	for _, id := range m.Catalog.IDs() {
		legend = append(legend, fmt.Sprintf("%c = %s (%s)", symbols[id], id, m.Catalog.Label(id)))
	}
	legend = append(legend, "? = not collapsed", "@ = location")
	fmt.Fprintln(w, strings.Join(legend, "  "))
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "--- Map (terrain only) ---")
	writeMapGrid(w, g, symbols, false)
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "--- Map (with locations) ---")
	writeMapGrid(w, g, symbols, true)
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "--- Possibilities (open cells; . = collapsed) ---")
	writeEntropyGrid(w, g)
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "--- Terrain counts ---")
	counts := g.TerrainCounts()
	for _, id := range m.Catalog.IDs() {
		fmt.Fprintf(w, "  %s: %d\n", id, counts[id])
	}
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "--- Locations ---")
	if len(m.Placed) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range m.Placed {
		fmt.Fprintf(w, "  x: %d y: %d id: %s name: %q terrain: %s\n",
			p.X, p.Y, p.Template.ID, p.Template.DisplayName(), g.GetCell(p.X, p.Y).Terrain)
	}
	return nil
}

// DumpMapToFile writes the dump to path, or to map.txt in the working
// directory when path is empty, and returns the absolute path written.
func DumpMapToFile(m MapInfo, path string) (string, error) {
	if path == "" {
		path = mapDumpFilename
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteMapDump(f, m); err != nil {
		return "", err
	}
	return absPath, nil
}
