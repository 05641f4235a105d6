package generator

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ill13/wfc-softrender/pkg/game/naming"
	"github.com/ill13/wfc-softrender/pkg/game/theme"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func loadTheme(t *testing.T, name string) *theme.Theme {
	t.Helper()
	th, err := theme.Load(name)
	require.NoError(t, err)
	return th
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestGenerate_UserNameSeedsRun(t *testing.T) {
	gen := &WFCGenerator{Now: fixedClock}
	res, err := gen.Generate(context.Background(), Request{
		Theme: loadTheme(t, "fantasy"), Width: 16, Height: 12, Name: "Ancient Meadow", Logger: quiet,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ancient Meadow", res.Name)
	assert.Equal(t, int64(893131), res.Seed)
	assert.Equal(t, "fantasy", res.Theme)
	assert.True(t, res.Grid.IsComplete())
	assert.Empty(t, res.Grid.Validate())
	assert.Equal(t, 16*12, res.Grid.CollapsedCount())
}

func TestGenerate_SameNameSameMap(t *testing.T) {
	for _, name := range theme.Names() {
		t.Run(name, func(t *testing.T) {
			req := Request{Theme: loadTheme(t, name), Width: 14, Height: 10, Name: "Ancient Meadow", Logger: quiet}

			a, err := WFC.Generate(context.Background(), req)
			require.NoError(t, err)
			b, err := WFC.Generate(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, a.Grid.Snapshot(), b.Grid.Snapshot())
			assert.Equal(t, a.Templates, b.Templates)
			require.Equal(t, len(a.Placed), len(b.Placed))
			for i := range a.Placed {
				assert.Equal(t, a.Placed[i].Template.ID, b.Placed[i].Template.ID)
				assert.Equal(t, a.Placed[i].X, b.Placed[i].X)
				assert.Equal(t, a.Placed[i].Y, b.Placed[i].Y)
			}
		})
	}
}

func TestGenerate_ExplicitSeed(t *testing.T) {
	seed := int64(1234)
	req := Request{Theme: loadTheme(t, "modern"), Width: 10, Height: 10, Seed: &seed, Logger: quiet}

	a, err := WFC.Generate(context.Background(), req)
	require.NoError(t, err)
	b, err := WFC.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, seed, a.Seed)
	assert.NotEmpty(t, a.Name)
	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.Grid.Snapshot(), b.Grid.Snapshot())
}

func TestPrepare_ProvisionalNameDerivesSeed(t *testing.T) {
	gen := &WFCGenerator{Now: fixedClock}
	p, err := gen.Prepare(Request{Theme: loadTheme(t, "cyberpunk"), Width: 8, Height: 8, Logger: quiet})
	require.NoError(t, err)

	assert.False(t, p.UserNamed)
	assert.NotEmpty(t, p.Name)
	assert.Equal(t, naming.StringToSeed(p.Name), p.Seed)

	again, err := gen.Prepare(Request{Theme: loadTheme(t, "cyberpunk"), Width: 8, Height: 8, Logger: quiet})
	require.NoError(t, err)
	assert.Equal(t, p.Name, again.Name)
}

func TestPlan_FinishRequiresCompleteGrid(t *testing.T) {
	p, err := WFC.Prepare(Request{Theme: loadTheme(t, "fantasy"), Width: 8, Height: 8, Name: "x", Logger: quiet})
	require.NoError(t, err)

	_, err = p.Finish()
	assert.ErrorIs(t, err, ErrNotFinished)

	require.NoError(t, p.Engine.Run(context.Background()))
	res, err := p.Finish()
	require.NoError(t, err)
	assert.Equal(t, "x", res.Name)
}

func TestRequestValidation(t *testing.T) {
	th := loadTheme(t, "fantasy")
	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"no theme", Request{Width: 4, Height: 4}, ErrNoTheme},
		{"zero width", Request{Theme: th, Width: 0, Height: 4}, ErrBadSize},
		{"too tall", Request{Theme: th, Width: 4, Height: MaxDimension + 1}, ErrBadSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := WFC.Generate(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WFC.Generate(ctx, Request{Theme: loadTheme(t, "fantasy"), Width: 8, Height: 8, Name: "x", Logger: quiet})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultGenerator(t *testing.T) {
	assert.Equal(t, "Wave Function Collapse", DefaultGenerator.Name())
}
