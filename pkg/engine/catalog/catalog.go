// Package catalog holds the read-only configuration the generator works from:
// terrain types with their weights and adjacency lists, location templates and
// the terrain patterns stamped onto a grid before generation.
package catalog

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

var (
	ErrEmptyCatalog  = errors.New("catalog: at least one terrain type is required")
	ErrEmptyID       = errors.New("catalog: terrain id must not be empty")
	ErrDuplicateID   = errors.New("catalog: duplicate terrain id")
	ErrInvalidWeight = errors.New("catalog: terrain weight must be positive")
	ErrUnknownID     = errors.New("catalog: unknown terrain id")
)

// TerrainType describes one terrain id: how likely it is to be picked and
// which terrains it tolerates next to it.
type TerrainType struct {
	ID       string
	Label    string
	Weight   float64
	Adjacent []string
	Colors   []string
}

// Catalog is an ordered, validated set of terrain types.
type Catalog struct {
	ids      []string
	types    map[string]*TerrainType
	adjacent map[string]mapset.Set[string]
}

// New validates the terrain types and builds a catalog. Declaration order is
// kept and is the order every consumer iterates in.
func New(types []TerrainType) (*Catalog, error) {
	if len(types) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		ids:      make([]string, 0, len(types)),
		types:    make(map[string]*TerrainType, len(types)),
		adjacent: make(map[string]mapset.Set[string], len(types)),
	}

	for i := range types {
		t := types[i]
		if t.ID == "" {
			return nil, fmt.Errorf("terrain #%d: %w", i, ErrEmptyID)
		}
		if _, found := c.types[t.ID]; found {
			return nil, fmt.Errorf("terrain %q: %w", t.ID, ErrDuplicateID)
		}
		if !(t.Weight > 0) {
			return nil, fmt.Errorf("terrain %q weight %v: %w", t.ID, t.Weight, ErrInvalidWeight)
		}

		adj := mapset.New[string]()
		for _, id := range t.Adjacent {
			adj.Put(id)
		}

		c.ids = append(c.ids, t.ID)
		c.types[t.ID] = &t
		c.adjacent[t.ID] = adj
	}

	return c, nil
}

// IDs returns the terrain ids in declaration order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Len returns the number of terrain types.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// Get returns the terrain type for id, or nil if the id is unknown.
func (c *Catalog) Get(id string) *TerrainType {
	return c.types[id]
}

// Has reports whether id is a known terrain.
func (c *Catalog) Has(id string) bool {
	_, found := c.types[id]
	return found
}

// Weight returns the selection weight of id, or 0 for unknown ids.
func (c *Catalog) Weight(id string) float64 {
	if t := c.types[id]; t != nil {
		return t.Weight
	}
	return 0
}

// Accepts reports whether neighbor appears in the adjacency list of p.
// The relation is not symmetric.
func (c *Catalog) Accepts(p, neighbor string) bool {
	adj, found := c.adjacent[p]
	if !found {
		return false
	}
	return adj.Has(neighbor)
}

// Label returns the display label of id, falling back to the id itself.
func (c *Catalog) Label(id string) string {
	if t := c.types[id]; t != nil && t.Label != "" {
		return t.Label
	}
	return id
}

// Colors returns the configured display colors of id.
func (c *Catalog) Colors(id string) []string {
	if t := c.types[id]; t != nil {
		return t.Colors
	}
	return nil
}
