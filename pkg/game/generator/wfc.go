package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
	"github.com/ill13/wfc-softrender/pkg/engine/wfc"
	"github.com/ill13/wfc-softrender/pkg/game/naming"
	"github.com/ill13/wfc-softrender/pkg/game/templates"
	"github.com/ill13/wfc-softrender/pkg/game/theme"
)

// WFCGenerator builds maps with the wave function collapse engine.
type WFCGenerator struct {
	// Now seeds the draw of a provisional name when the request has neither
	// a name nor a seed.
	Now func() time.Time
}

// Name returns the generator name
func (g *WFCGenerator) Name() string {
	return "Wave Function Collapse"
}

// Plan is a prepared generation: a seeded engine and the naming state that
// goes with it. Interactive callers step Plan.Engine themselves and call
// Finish once the grid is complete.
type Plan struct {
	Engine    *wfc.Engine
	Name      string
	Seed      int64
	UserNamed bool

	theme   *theme.Theme
	catalog *catalog.Catalog
	started time.Time
}

// Prepare validates req, settles the seed and builds the engine.
//
// A user-supplied name seeds the run and is kept. An explicit seed is used
// directly. Otherwise a provisional name is drawn and hashed, and the final
// name is drawn again from the finished map.
func (g *WFCGenerator) Prepare(req Request) (*Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	cat, err := req.Theme.Catalog()
	if err != nil {
		return nil, err
	}
	seeder, err := templates.New(cat, req.Theme.TerrainTemplates())
	if err != nil {
		return nil, fmt.Errorf("theme %q: %w", req.Theme.Name, err)
	}

	p := &Plan{
		Name:    req.Name,
		theme:   req.Theme,
		catalog: cat,
	}
	switch {
	case req.Name != "":
		p.UserNamed = true
		p.Seed = naming.StringToSeed(req.Name)
	case req.Seed != nil:
		p.Seed = *req.Seed
	default:
		now := time.Now
		if g.Now != nil {
			now = g.Now
		}
		rng := rand.New(rand.NewSource(now().UnixNano()))
		p.Name = naming.Generate(naming.Input{
			Catalog:    cat,
			Adjectives: req.Theme.Adjectives,
		}, rng)
		p.Seed = naming.StringToSeed(p.Name)
	}

	p.Engine, err = wfc.New(wfc.Options{
		Width:       req.Width,
		Height:      req.Height,
		Catalog:     cat,
		Locations:   req.Theme.LocationTemplates(),
		Seeder:      seeder,
		Seed:        p.Seed,
		Delay:       req.Delay,
		MaxRestarts: req.MaxRestarts,
		Logger:      log.With("theme", req.Theme.Name),
	})
	if err != nil {
		return nil, err
	}
	p.started = time.Now()

	log.Debug("generation prepared", "theme", req.Theme.Name, "name", p.Name, "seed", p.Seed)
	return p, nil
}

// Finish names the completed map and returns the result. The name is drawn
// from the engine's random source unless the user chose it.
func (p *Plan) Finish() (*Result, error) {
	if !p.Engine.IsComplete() {
		return nil, ErrNotFinished
	}
	placed := p.Engine.Placed()

	if !p.UserNamed {
		p.Name = naming.Generate(naming.Input{
			Grid:       p.Engine.Grid(),
			Catalog:    p.catalog,
			Placed:     placed,
			Adjectives: p.theme.Adjectives,
		}, p.Engine.Rand())
	}

	g := p.Engine.Grid()
	return &Result{
		Name:      p.Name,
		Seed:      p.Seed,
		Theme:     p.theme.Name,
		Width:     g.Width(),
		Height:    g.Height(),
		Grid:      g,
		Catalog:   p.catalog,
		Placed:    placed,
		Templates: p.Engine.AppliedTemplates(),
		Stats:     p.Engine.Stats(),
		Elapsed:   time.Since(p.started),
	}, nil
}

// Generate runs a full generation and returns the finished map.
func (g *WFCGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	p, err := g.Prepare(req)
	if err != nil {
		return nil, err
	}
	if err := p.Engine.Run(ctx); err != nil {
		return nil, fmt.Errorf("generate %q: %w", p.Name, err)
	}
	return p.Finish()
}
