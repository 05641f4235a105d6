package wfc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
	"github.com/ill13/wfc-softrender/pkg/engine/world"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func mustCatalog(t *testing.T, types ...catalog.TerrainType) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(types)
	require.NoError(t, err)
	return c
}

// abCatalog is two terrains that accept each other and themselves.
func abCatalog(t *testing.T) *catalog.Catalog {
	return mustCatalog(t,
		catalog.TerrainType{ID: "A", Weight: 1, Adjacent: []string{"A", "B"}, Colors: []string{"#aaa"}},
		catalog.TerrainType{ID: "B", Weight: 1, Adjacent: []string{"A", "B"}, Colors: []string{"#bbb", "#bcb"}},
	)
}

// coastCatalog only lets water and grass meet through sand.
func coastCatalog(t *testing.T) *catalog.Catalog {
	return mustCatalog(t,
		catalog.TerrainType{ID: "water", Weight: 2, Adjacent: []string{"water", "sand"}},
		catalog.TerrainType{ID: "sand", Weight: 1, Adjacent: []string{"water", "sand", "grass"}},
		catalog.TerrainType{ID: "grass", Weight: 3, Adjacent: []string{"sand", "grass"}},
	)
}

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quiet
	}
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{Width: 4, Height: 4, Logger: quiet})
	assert.ErrorIs(t, err, ErrNoCatalog)

	_, err = New(Options{Width: 0, Height: 4, Catalog: abCatalog(t), Logger: quiet})
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = New(Options{
		Width: 2, Height: 2, Catalog: abCatalog(t), Logger: quiet,
		Locations: []catalog.LocationTemplate{{ID: "x"}, {ID: "x"}},
	})
	assert.ErrorIs(t, err, catalog.ErrDuplicateID)
}

func TestRun_FourByFourAB(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		e := newEngine(t, Options{Width: 4, Height: 4, Catalog: abCatalog(t), Seed: seed})
		require.NoError(t, e.Run(context.Background()), "seed %d", seed)

		g := e.Grid()
		assert.True(t, g.IsComplete())
		assert.Equal(t, 16, g.CollapsedCount())
		assert.Empty(t, g.Validate())
		g.ForEachCell(func(x, y int, c *world.Cell) {
			assert.Contains(t, []string{"A", "B"}, c.Terrain, "cell (%d,%d)", x, y)
		})
		assert.LessOrEqual(t, e.Stats().Steps, 32)
		assert.Zero(t, e.Stats().Restarts)
	}
}

func TestRun_Deterministic(t *testing.T) {
	run := func() ([]world.CellState, []world.PlacedLocation) {
		e := newEngine(t, Options{
			Width: 12, Height: 9, Catalog: coastCatalog(t), Seed: 893131,
			Locations: []catalog.LocationTemplate{
				{ID: "port", Weight: 1, Rules: catalog.LocationRules{On: []string{"sand"}, Adjacent: []string{"water"}}},
				{ID: "farm", Weight: 2, Rules: catalog.LocationRules{On: []string{"grass"}}},
				{ID: "camp", Weight: 3},
			},
		})
		require.NoError(t, e.Run(context.Background()))
		return e.Grid().Snapshot(), e.Placed()
	}

	grid1, placed1 := run()
	grid2, placed2 := run()
	assert.Equal(t, grid1, grid2)
	require.Equal(t, len(placed1), len(placed2))
	for i := range placed1 {
		assert.Equal(t, placed1[i].X, placed2[i].X)
		assert.Equal(t, placed1[i].Y, placed2[i].Y)
		assert.Equal(t, placed1[i].Template.ID, placed2[i].Template.ID)
	}
}

func TestRun_RerunWithSameSeedRepeats(t *testing.T) {
	e := newEngine(t, Options{Width: 8, Height: 8, Catalog: coastCatalog(t), Seed: 42})
	require.NoError(t, e.Run(context.Background()))
	first := e.Grid().Snapshot()

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, first, e.Grid().Snapshot())
}

func TestStep_KeepsCollapseInvariantAndShrinks(t *testing.T) {
	e := newEngine(t, Options{Width: 7, Height: 6, Catalog: coastCatalog(t), Seed: 7})
	g := e.Grid()

	for i := 0; i < 500 && !e.IsComplete(); i++ {
		before := make(map[[2]int][]string)
		g.ForEachCell(func(x, y int, c *world.Cell) {
			before[[2]int{x, y}] = c.Ordered(e.ids)
		})

		res, err := e.Step()
		require.Empty(t, g.Validate(), "after step %d", i)

		if res == StepRestarted {
			require.Error(t, err)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, StepCollapsed, res)

		g.ForEachCell(func(x, y int, c *world.Cell) {
			prev := before[[2]int{x, y}]
			for _, p := range c.Ordered(e.ids) {
				assert.Contains(t, prev, p, "cell (%d,%d) gained %q", x, y, p)
			}
		})
	}

	require.True(t, e.IsComplete())
	res, err := e.Step()
	assert.NoError(t, err)
	assert.Equal(t, StepComplete, res)
}

func TestWeights_NeighbourBias(t *testing.T) {
	e := newEngine(t, Options{Width: 3, Height: 3, Catalog: abCatalog(t)})
	g := e.Grid()
	g.GetCell(0, 1).Collapse("A", "")
	g.GetCell(2, 1).Collapse("A", "")
	g.GetCell(1, 0).Collapse("B", "")

	options, weights, total := e.weights(g.GetCell(1, 1))
	require.Equal(t, []string{"A", "B"}, options)
	assert.InDelta(t, 1.7*1.7, weights[0], 1e-9)
	assert.InDelta(t, 1.7, weights[1], 1e-9)
	assert.InDelta(t, 1.7*1.7+1.7, total, 1e-9)
}

func TestCollapse_ContradictedCellFails(t *testing.T) {
	e := newEngine(t, Options{Width: 2, Height: 1, Catalog: abCatalog(t)})
	c := e.Grid().GetCell(0, 0)
	c.Restrict(nil)

	assert.False(t, e.collapse(c))
	assert.False(t, c.Collapsed)
	assert.Empty(t, c.Terrain)
}

func TestCollapse_DrawsConfiguredColor(t *testing.T) {
	e := newEngine(t, Options{Width: 1, Height: 1, Catalog: abCatalog(t), Seed: 3})
	c := e.Grid().GetCell(0, 0)
	require.True(t, e.collapse(c))

	colors := e.Catalog().Colors(c.Terrain)
	assert.Contains(t, colors, c.Color)
}

// lineCatalog has A and B that only accept themselves, and C that accepts
// nothing.
func lineCatalog(t *testing.T) *catalog.Catalog {
	return mustCatalog(t,
		catalog.TerrainType{ID: "A", Weight: 1, Adjacent: []string{"A"}},
		catalog.TerrainType{ID: "B", Weight: 1, Adjacent: []string{"B"}},
		catalog.TerrainType{ID: "C", Weight: 1},
	)
}

func TestPropagate_OpenNeighbourKeepsEverything(t *testing.T) {
	e := newEngine(t, Options{Width: 3, Height: 1, Catalog: lineCatalog(t)})
	g := e.Grid()

	left := g.GetCell(0, 0)
	e.commit(left, "A")
	require.NoError(t, e.propagate(left))

	// (2,0) is still open, so nothing can be ruled out at (1,0).
	assert.Equal(t, []string{"A", "B", "C"}, g.GetCell(1, 0).Ordered(e.ids))
}

func TestPropagate_OneAcceptedNeighbourIsEnough(t *testing.T) {
	e := newEngine(t, Options{Width: 3, Height: 1, Catalog: lineCatalog(t)})
	g := e.Grid()

	left, right := g.GetCell(0, 0), g.GetCell(2, 0)
	e.commit(left, "A")
	e.commit(right, "B")
	require.NoError(t, e.propagate(right))

	// A is accepted by the left neighbour and B by the right one; C by neither.
	mid := g.GetCell(1, 0)
	assert.Equal(t, []string{"A", "B"}, mid.Ordered(e.ids))
	assert.False(t, mid.Collapsed)
}

func TestPropagate_SingletonIsCommitted(t *testing.T) {
	e := newEngine(t, Options{Width: 3, Height: 1, Catalog: lineCatalog(t)})
	g := e.Grid()

	left, right := g.GetCell(0, 0), g.GetCell(2, 0)
	e.commit(left, "A")
	e.commit(right, "A")
	require.NoError(t, e.propagate(right))

	mid := g.GetCell(1, 0)
	assert.True(t, mid.Collapsed)
	assert.Equal(t, "A", mid.Terrain)
	assert.Empty(t, g.Validate())
}

func TestPropagate_Contradiction(t *testing.T) {
	e := newEngine(t, Options{Width: 3, Height: 1, Catalog: lineCatalog(t)})
	g := e.Grid()

	left, right := g.GetCell(0, 0), g.GetCell(2, 0)
	e.commit(left, "C")
	e.commit(right, "C")
	err := e.propagate(right)

	var contradiction *ContradictionError
	require.True(t, errors.As(err, &contradiction))
	assert.Equal(t, 1, contradiction.X)
	assert.Equal(t, 0, contradiction.Y)
}

func TestStep_ContradictionRestartsGrid(t *testing.T) {
	e := newEngine(t, Options{Width: 3, Height: 1, Catalog: lineCatalog(t)})
	g := e.Grid()

	e.commit(g.GetCell(0, 0), "C")
	g.GetCell(1, 0).Restrict([]string{"C"})
	g.GetCell(2, 0).Restrict([]string{"C"})

	res, err := e.Step()
	assert.Equal(t, StepRestarted, res)
	var contradiction *ContradictionError
	assert.True(t, errors.As(err, &contradiction))

	assert.Equal(t, 1, e.Stats().Contradictions)
	assert.Equal(t, 1, e.Stats().Restarts)
	assert.Zero(t, e.Grid().CollapsedCount())
	assert.Empty(t, e.Grid().Validate())
}

type countingRecovery struct {
	calls  int
	causes []error
}

func (r *countingRecovery) Recover(e *Engine, cause error) {
	r.calls++
	r.causes = append(r.causes, cause)
	e.Reset()
}

func TestStep_CollapseFailureUsesRecovery(t *testing.T) {
	rec := &countingRecovery{}
	e := newEngine(t, Options{Width: 2, Height: 2, Catalog: abCatalog(t), Recovery: rec})
	e.Grid().GetCell(1, 1).Restrict(nil)

	res, err := e.Step()
	assert.Equal(t, StepRestarted, res)
	assert.ErrorIs(t, err, ErrCollapseFailed)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, 1, e.Stats().CollapseFailures)
	assert.Empty(t, e.Grid().Validate())
}

// keepAttempts rebuilds the grid but leaves the attempt counter alone, so
// successful steps accumulate across restarts.
type keepAttempts struct{}

func (keepAttempts) Recover(e *Engine, _ error) {
	e.grid.Build(e.width, e.height, e.ids)
}

// hostileCatalog can never complete a 3x1 grid: no terrain accepts any
// neighbour.
func hostileCatalog(t *testing.T) *catalog.Catalog {
	return mustCatalog(t,
		catalog.TerrainType{ID: "A", Weight: 1},
		catalog.TerrainType{ID: "B", Weight: 1},
	)
}

func TestRun_Stall(t *testing.T) {
	e := newEngine(t, Options{
		Width: 3, Height: 1, Catalog: hostileCatalog(t), Seed: 5,
		Recovery: keepAttempts{}, MaxRestarts: -1,
	})
	err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrStall)
	assert.ErrorIs(t, e.Exhausted(), ErrStall)
	assert.Empty(t, e.Placed())
}

func TestExhausted_FreshEngine(t *testing.T) {
	e := newEngine(t, Options{Width: 4, Height: 4, Catalog: abCatalog(t)})
	assert.NoError(t, e.Exhausted())
}

func TestRun_RestartLimit(t *testing.T) {
	e := newEngine(t, Options{
		Width: 3, Height: 1, Catalog: hostileCatalog(t), Seed: 5,
		MaxRestarts: 4,
	})
	err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrRestartLimit)
	assert.Equal(t, 5, e.Stats().Restarts)
	assert.ErrorIs(t, e.Exhausted(), ErrRestartLimit)
}

func TestRun_Cancelled(t *testing.T) {
	e := newEngine(t, Options{Width: 4, Height: 4, Catalog: abCatalog(t)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, e.IsComplete())
	assert.Empty(t, e.Placed())
}

func TestRun_CancelledDuringDelay(t *testing.T) {
	e := newEngine(t, Options{
		Width: 20, Height: 20, Catalog: abCatalog(t),
		Delay:     50 * time.Millisecond,
		Locations: []catalog.LocationTemplate{{ID: "camp", Weight: 1}},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.False(t, e.IsComplete())
	assert.Empty(t, e.Placed())
}

type pinSeeder struct {
	cells map[[2]int]string
}

func (s pinSeeder) Seed(g *world.Grid, _ *rand.Rand) []string {
	for pos, id := range s.cells {
		g.GetCell(pos[0], pos[1]).Collapse(id, "")
	}
	return []string{"pins"}
}

func TestReset_AppliesSeeder(t *testing.T) {
	seeder := pinSeeder{cells: map[[2]int]string{{0, 0}: "A", {2, 0}: "A"}}
	e := newEngine(t, Options{Width: 3, Height: 1, Catalog: lineCatalog(t), Seeder: seeder})

	assert.Equal(t, []string{"pins"}, e.AppliedTemplates())
	g := e.Grid()
	assert.Equal(t, "A", g.GetCell(0, 0).Terrain)
	// settling from the pins forces the cell between them.
	assert.Equal(t, "A", g.GetCell(1, 0).Terrain)
	assert.Empty(t, g.Validate())

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, "A", g.GetCell(2, 0).Terrain)
}

// flakySeeder pins a conflicting pattern for its first bad calls and a
// consistent one afterwards.
type flakySeeder struct {
	bad   int
	calls int
}

func (s *flakySeeder) Seed(g *world.Grid, _ *rand.Rand) []string {
	s.calls++
	id := "A"
	if s.calls <= s.bad {
		id = "C"
	}
	g.GetCell(0, 0).Collapse(id, "")
	g.GetCell(2, 0).Collapse(id, "")
	return []string{"pins"}
}

func TestReset_RedrawsConflictingSeed(t *testing.T) {
	seeder := &flakySeeder{bad: SeedAttempts - 1}
	e := newEngine(t, Options{Width: 3, Height: 1, Catalog: lineCatalog(t), Seeder: seeder})

	assert.Equal(t, SeedAttempts, seeder.calls)
	assert.Equal(t, []string{"pins"}, e.AppliedTemplates())
	assert.Equal(t, "A", e.Grid().GetCell(0, 0).Terrain)
	assert.Empty(t, e.Grid().Validate())
}

func TestReset_DropsConflictingSeed(t *testing.T) {
	seeder := &flakySeeder{bad: 1 << 30}
	e := newEngine(t, Options{Width: 3, Height: 1, Catalog: lineCatalog(t), Seeder: seeder})

	assert.Equal(t, SeedAttempts, seeder.calls)
	assert.Empty(t, e.AppliedTemplates())
	assert.Zero(t, e.Grid().CollapsedCount())
}

func TestReseed(t *testing.T) {
	e := newEngine(t, Options{Width: 2, Height: 2, Catalog: abCatalog(t), Seed: 9})
	assert.Equal(t, int64(9), e.Seed())
	a := e.Rand().Int63()

	e.Reseed(9)
	assert.Equal(t, a, e.Rand().Int63())
}
