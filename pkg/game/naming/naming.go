// Package naming derives generation seeds from map names and invents names
// for finished maps.
package naming

import (
	"fmt"
	"math/rand"
	"unicode/utf16"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
	"github.com/ill13/wfc-softrender/pkg/engine/world"
)

// FallbackAdjective is used when a theme lists no adjectives.
const FallbackAdjective = "Mysterious"

// StringToSeed hashes name into [0, 1000000). It runs seed = seed*31 + c over
// the UTF-16 code units of name with 32-bit signed wraparound, then takes
// the absolute value modulo 1000000, so names map to the same seeds the
// browser version of the generator produced.
func StringToSeed(name string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(name)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v % 1000000
}

// Input is what Generate needs to know about a map.
type Input struct {
	Grid       *world.Grid
	Catalog    *catalog.Catalog
	Placed     []world.PlacedLocation
	Adjectives []string
}

// DominantTerrain returns the terrain covering the most collapsed cells,
// the earliest in catalog order on ties. With no collapsed cell it returns
// the first terrain of the catalog.
func DominantTerrain(g *world.Grid, c *catalog.Catalog) string {
	ids := c.IDs()
	counts := map[string]int{}
	if g != nil {
		counts = g.TerrainCounts()
	}

	best, bestCount := ids[0], 0
	for _, id := range ids {
		if counts[id] > bestCount {
			best, bestCount = id, counts[id]
		}
	}
	return best
}

// IconicLocation returns the placed location with the lowest template
// weight, the earliest placed on ties. ok is false when nothing was placed.
func IconicLocation(placed []world.PlacedLocation) (name string, ok bool) {
	var best *catalog.LocationTemplate
	for _, p := range placed {
		if p.Template == nil {
			continue
		}
		if best == nil || p.Template.Weight < best.Weight {
			best = p.Template
		}
	}
	if best == nil {
		return "", false
	}
	return best.DisplayName(), true
}

// Generate draws a map name from the dominant terrain, the iconic location
// and a theme adjective. All draws come from rng.
func Generate(in Input, rng *rand.Rand) string {
	label := in.Catalog.Label(DominantTerrain(in.Grid, in.Catalog))
	iconic, hasIconic := IconicLocation(in.Placed)

	adj := FallbackAdjective
	if len(in.Adjectives) > 0 {
		adj = in.Adjectives[rng.Intn(len(in.Adjectives))]
	}

	site := fmt.Sprintf("The %s Site", adj)
	realm := fmt.Sprintf("The %s Realm of", adj)
	place := "Place"
	if hasIconic {
		site = iconic
		realm = iconic + " of"
		place = iconic
	}

	patterns := []string{
		fmt.Sprintf("%s %s", adj, label),
		fmt.Sprintf("%s in the %s", site, label),
		fmt.Sprintf("%s the %s", realm, label),
		fmt.Sprintf("The %s %s by the %s", adj, place, label),
		fmt.Sprintf("Where the %s Begins", label),
	}
	return patterns[rng.Intn(len(patterns))]
}
