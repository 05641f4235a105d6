package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
	"github.com/ill13/wfc-softrender/pkg/engine/wfc"
	"github.com/ill13/wfc-softrender/pkg/engine/world"
	"github.com/ill13/wfc-softrender/pkg/game/theme"
)

// MaxDimension bounds the width and height of a generated map.
const MaxDimension = 256

var (
	ErrNoTheme     = errors.New("generator: a theme is required")
	ErrBadSize     = errors.New("generator: width and height must be between 1 and 256")
	ErrNotFinished = errors.New("generator: generation has not completed")
)

// GridGenerator is an interface for map generation algorithms
type GridGenerator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
	Name() string
}

// Request describes one map to generate.
type Request struct {
	Theme  *theme.Theme
	Width  int
	Height int

	// Name is the map name chosen by the user. The seed is derived from it
	// and it is kept as the final name.
	Name string

	// Seed, when set, is used as is and the name is invented afterwards.
	Seed *int64

	Delay       time.Duration
	MaxRestarts int
	Logger      *slog.Logger
}

// Result is a finished map.
type Result struct {
	Name      string
	Seed      int64
	Theme     string
	Width     int
	Height    int
	Grid      *world.Grid
	Catalog   *catalog.Catalog
	Placed    []world.PlacedLocation
	Templates []string
	Stats     wfc.Stats
	Elapsed   time.Duration
}

// Validate checks the request before any work is done.
func (r Request) Validate() error {
	if r.Theme == nil {
		return ErrNoTheme
	}
	if r.Width < 1 || r.Width > MaxDimension || r.Height < 1 || r.Height > MaxDimension {
		return ErrBadSize
	}
	return nil
}

// Available generators
var (
	WFC = &WFCGenerator{Now: time.Now}
)

// DefaultGenerator is the default map generator
var DefaultGenerator GridGenerator = WFC
