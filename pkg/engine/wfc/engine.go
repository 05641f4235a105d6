// Package wfc implements the terrain generator: lowest-entropy cell
// selection, weighted collapse, neighbour propagation, restart on
// contradiction, and placement of named locations on the finished grid.
//
// An Engine owns its grid and its random source. It is not safe for
// concurrent use; callers run at most one generation per engine at a time.
package wfc

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
	"github.com/ill13/wfc-softrender/pkg/engine/world"
)

const (
	// DefaultNeighborMultiplier biases collapse towards terrain already
	// present on collapsed neighbours.
	DefaultNeighborMultiplier = 1.7

	// DefaultMaxRestarts caps how often Run rebuilds the grid after a
	// contradiction before giving up.
	DefaultMaxRestarts = 1000

	// SeedAttempts is how often Reset redraws conflicting templates.
	SeedAttempts = 3

	// MinLocationSpacing is the smallest Manhattan distance allowed between
	// two placed locations.
	MinLocationSpacing = 3
)

// Seeder pre-assigns terrain to part of a freshly built grid. It returns the
// ids of the patterns it applied.
type Seeder interface {
	Seed(g *world.Grid, rng *rand.Rand) []string
}

// Options configure an Engine.
type Options struct {
	Width   int
	Height  int
	Catalog *catalog.Catalog

	// Locations are tried in most-constrained-first order after the grid
	// is complete.
	Locations []catalog.LocationTemplate

	Seeder   Seeder
	Recovery Recovery

	Seed  int64
	Delay time.Duration

	// MaxRestarts bounds the restarts of one Run. Zero means
	// DefaultMaxRestarts, a negative value means no bound.
	MaxRestarts int

	NeighborMultiplier float64
	Logger             *slog.Logger
}

// Stats counts what happened during the current run.
type Stats struct {
	Steps            int
	Restarts         int
	Contradictions   int
	CollapseFailures int
}

// Engine generates one grid at a time.
type Engine struct {
	width      int
	height     int
	catalog    *catalog.Catalog
	ids        []string
	locations  []catalog.LocationTemplate
	seeder     Seeder
	recovery   Recovery
	multiplier float64
	delay      time.Duration
	maxRestart int
	log        *slog.Logger

	seed int64
	rng  *rand.Rand

	grid     *world.Grid
	placed   []world.PlacedLocation
	applied  []string
	attempts int
	stats    Stats
}

// New validates opts and returns an engine with a freshly seeded grid.
func New(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, ErrNoCatalog
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%dx%d: %w", opts.Width, opts.Height, ErrInvalidSize)
	}
	if err := catalog.ValidateLocations(opts.Locations); err != nil {
		return nil, err
	}

	e := &Engine{
		width:      opts.Width,
		height:     opts.Height,
		catalog:    opts.Catalog,
		ids:        opts.Catalog.IDs(),
		locations:  append([]catalog.LocationTemplate(nil), opts.Locations...),
		seeder:     opts.Seeder,
		recovery:   opts.Recovery,
		multiplier: opts.NeighborMultiplier,
		delay:      opts.Delay,
		maxRestart: opts.MaxRestarts,
		log:        opts.Logger,
	}
	if e.recovery == nil {
		e.recovery = FullRestart{}
	}
	if e.multiplier <= 0 {
		e.multiplier = DefaultNeighborMultiplier
	}
	if e.maxRestart == 0 {
		e.maxRestart = DefaultMaxRestarts
	}
	if e.log == nil {
		e.log = slog.Default()
	}

	e.grid = world.NewGrid(e.width, e.height, e.ids)
	e.Reseed(opts.Seed)
	e.Reset()
	return e, nil
}

// Reseed replaces the random source with one seeded from seed.
func (e *Engine) Reseed(seed int64) {
	e.seed = seed
	e.rng = rand.New(rand.NewSource(seed))
}

// Seed returns the seed of the current random source.
func (e *Engine) Seed() int64 {
	return e.seed
}

// Rand exposes the engine's random source so collaborators can draw from
// the same stream.
func (e *Engine) Rand() *rand.Rand {
	return e.rng
}

// Grid returns the engine's grid. Callers must treat it as read-only.
func (e *Engine) Grid() *world.Grid {
	return e.grid
}

// Catalog returns the terrain catalog the engine was built with.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Placed returns a copy of the locations placed so far.
func (e *Engine) Placed() []world.PlacedLocation {
	return append([]world.PlacedLocation(nil), e.placed...)
}

// AppliedTemplates returns the ids of the patterns the seeder applied to the
// current grid.
func (e *Engine) AppliedTemplates() []string {
	return append([]string(nil), e.applied...)
}

// Stats returns the counters of the current run.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Attempts returns the successful steps since the grid was last rebuilt.
func (e *Engine) Attempts() int {
	return e.attempts
}

// AttemptBudget is the number of successful steps Run allows between
// restarts before reporting a stall.
func (e *Engine) AttemptBudget() int {
	return e.width * e.height * 2
}

// IsComplete reports whether every cell is collapsed.
func (e *Engine) IsComplete() bool {
	return e.grid.IsComplete()
}

// Reset rebuilds the grid with every cell open, clears placements and
// re-applies the seeder. Pinned cells are propagated from immediately. A
// seeded pattern that contradicts the catalog is redrawn up to SeedAttempts
// times before the grid is left unseeded.
func (e *Engine) Reset() {
	e.grid.Build(e.width, e.height, e.ids)
	e.placed = nil
	e.applied = nil
	e.attempts = 0

	if e.seeder == nil {
		return
	}
	for try := 1; try <= SeedAttempts; try++ {
		e.applied = e.seeder.Seed(e.grid, e.rng)
		if len(e.applied) == 0 {
			return
		}
		err := e.settle()
		if err == nil {
			e.log.Debug("templates applied", "templates", e.applied, "try", try)
			return
		}
		e.log.Debug("templates conflict with terrain rules",
			"templates", e.applied, "try", try, "error", err)
		e.grid.Build(e.width, e.height, e.ids)
		e.applied = nil
	}
	e.log.Warn("templates kept conflicting with terrain rules, generating unseeded",
		"tries", SeedAttempts)
}

// settle propagates from every cell the seeder committed.
func (e *Engine) settle() error {
	var pinned []*world.Cell
	e.grid.ForEachCell(func(_, _ int, c *world.Cell) {
		if c.Collapsed {
			pinned = append(pinned, c)
		}
	})
	for _, c := range pinned {
		if err := e.propagate(c); err != nil {
			return err
		}
	}
	return nil
}
