// Package theme loads terrain themes: the terrain catalog, the locations to
// place and the patterns to stamp, plus the words used to name a map.
package theme

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
)

// DefaultColor is used for terrains that declare no colors.
const DefaultColor = "#333333"

// Default is the theme used when none is requested.
const Default = "fantasy"

var ErrUnknownTheme = errors.New("theme: unknown theme")

//go:embed themes/*.json
var builtin embed.FS

// Terrain is one entry of a theme's "elevation" object.
type Terrain struct {
	Label    string   `json:"label,omitempty"`
	Weight   float64  `json:"weight,omitempty"`
	Adjacent []string `json:"adjacent"`
	Colors   []string `json:"colors"`
}

// Rules mirrors catalog.LocationRules. A missing "on" means any terrain.
type Rules struct {
	On       []string `json:"on,omitempty"`
	Adjacent []string `json:"adjacent,omitempty"`
}

// Location is one entry of a theme's "locations" object.
type Location struct {
	Name   string  `json:"name"`
	Emoji  string  `json:"emoji,omitempty"`
	Weight float64 `json:"weight,omitempty"`
	Rules  Rules   `json:"rules"`
}

// Template is one entry of a theme's "templates" object.
type Template struct {
	Weight    float64    `json:"weight,omitempty"`
	Placement string     `json:"placement,omitempty"`
	Pattern   [][]string `json:"pattern"`
}

// Theme is a decoded theme file.
type Theme struct {
	Name       string            `json:"name"`
	Adjectives []string          `json:"adjectives,omitempty"`
	Elevation  Ordered[Terrain]  `json:"elevation"`
	Locations  Ordered[Location] `json:"locations"`
	Templates  Ordered[Template] `json:"templates,omitempty"`
}

// Parse decodes a theme and fills in defaults: weight 1, no adjacency and
// DefaultColor.
func Parse(data []byte) (*Theme, error) {
	var t Theme
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("theme: decode: %w", err)
	}
	if len(t.Elevation) == 0 {
		return nil, fmt.Errorf("theme %q: %w", t.Name, catalog.ErrEmptyCatalog)
	}

	for i := range t.Elevation {
		e := &t.Elevation[i].Value
		if e.Weight == 0 {
			e.Weight = 1
		}
		if e.Adjacent == nil {
			e.Adjacent = []string{}
		}
		if len(e.Colors) == 0 {
			e.Colors = []string{DefaultColor}
		}
	}
	for i := range t.Locations {
		if t.Locations[i].Value.Weight == 0 {
			t.Locations[i].Value.Weight = 1
		}
	}
	for i := range t.Templates {
		if t.Templates[i].Value.Weight == 0 {
			t.Templates[i].Value.Weight = 1
		}
	}
	return &t, nil
}

// Load returns the built-in theme with the given name.
func Load(name string) (*Theme, error) {
	data, err := builtin.ReadFile(path.Join("themes", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if t.Name == "" {
		t.Name = name
	}
	return t, nil
}

// LoadFile reads a theme from disk. The file name without extension is used
// when the theme has no name.
func LoadFile(file string) (*Theme, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	return t, nil
}

// Names lists the built-in themes in alphabetical order.
func Names() []string {
	entries, err := fs.ReadDir(builtin, "themes")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Catalog builds the terrain catalog in declaration order.
func (t *Theme) Catalog() (*catalog.Catalog, error) {
	types := make([]catalog.TerrainType, 0, len(t.Elevation))
	for _, e := range t.Elevation {
		types = append(types, catalog.TerrainType{
			ID:       e.Key,
			Label:    e.Value.Label,
			Weight:   e.Value.Weight,
			Adjacent: e.Value.Adjacent,
			Colors:   e.Value.Colors,
		})
	}
	c, err := catalog.New(types)
	if err != nil {
		return nil, fmt.Errorf("theme %q: %w", t.Name, err)
	}
	return c, nil
}

// LocationTemplates returns the theme's locations in declaration order.
func (t *Theme) LocationTemplates() []catalog.LocationTemplate {
	out := make([]catalog.LocationTemplate, 0, len(t.Locations))
	for _, e := range t.Locations {
		out = append(out, catalog.LocationTemplate{
			ID:     e.Key,
			Name:   e.Value.Name,
			Emoji:  e.Value.Emoji,
			Weight: e.Value.Weight,
			Rules: catalog.LocationRules{
				On:       e.Value.Rules.On,
				Adjacent: e.Value.Rules.Adjacent,
			},
		})
	}
	return out
}

// TerrainTemplates returns the theme's patterns in declaration order.
func (t *Theme) TerrainTemplates() []catalog.TerrainTemplate {
	out := make([]catalog.TerrainTemplate, 0, len(t.Templates))
	for _, e := range t.Templates {
		placement := catalog.Placement(e.Value.Placement)
		if placement == "" {
			placement = catalog.PlaceAny
		}
		out = append(out, catalog.TerrainTemplate{
			ID:        e.Key,
			Weight:    e.Value.Weight,
			Placement: placement,
			Pattern:   e.Value.Pattern,
		})
	}
	return out
}

// Validate builds the catalog and checks the locations and patterns against it.
func (t *Theme) Validate() error {
	c, err := t.Catalog()
	if err != nil {
		return err
	}
	if err := catalog.ValidateLocations(t.LocationTemplates()); err != nil {
		return fmt.Errorf("theme %q: %w", t.Name, err)
	}
	if err := catalog.ValidateTemplates(c, t.TerrainTemplates()); err != nil {
		return fmt.Errorf("theme %q: %w", t.Name, err)
	}
	return nil
}
