package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ill13/wfc-softrender/pkg/engine/wfc"
	"github.com/ill13/wfc-softrender/pkg/game/generator"
	"github.com/ill13/wfc-softrender/pkg/game/persistence"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// failingGenerator returns err from every Generate call.
type failingGenerator struct{ err error }

func (f failingGenerator) Name() string { return "failing" }

func (f failingGenerator) Generate(ctx context.Context, req generator.Request) (*generator.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return nil, f.err
}

func newTestServer(t *testing.T, withStore bool) http.Handler {
	t.Helper()
	var store Store
	if withStore {
		db, err := persistence.Open(filepath.Join(t.TempDir(), "maps.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		store = db
	}
	return New(generator.WFC, store, discard).Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListThemes(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodGet, "/api/themes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var themes []ThemeSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &themes))
	require.Len(t, themes, 3)
	assert.Equal(t, "cyberpunk", themes[0].Name)
	assert.Equal(t, "fantasy", themes[1].Name)
	assert.Equal(t, "modern", themes[2].Name)
	for _, th := range themes {
		assert.NotEmpty(t, th.Terrains, th.Name)
		assert.NotEmpty(t, th.Locations, th.Name)
	}
}

func TestGetTheme(t *testing.T) {
	h := newTestServer(t, false)

	rec := do(t, h, http.MethodGet, "/api/themes/fantasy", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var th map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &th))
	assert.Equal(t, "fantasy", th["name"])
	assert.Contains(t, th, "elevation")

	rec = do(t, h, http.MethodGet, "/api/themes/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Theme not found", decodeError(t, rec))
}

func TestCreateMap_WithoutStore(t *testing.T) {
	rec := do(t, newTestServer(t, false), http.MethodPost, "/api/maps",
		`{"theme":"fantasy","width":10,"height":8,"name":"Ancient Meadow"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got MapResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.ID)
	assert.Equal(t, "Ancient Meadow", got.Name)
	assert.Equal(t, int64(893131), got.Seed)
	assert.Equal(t, "fantasy", got.Theme)
	assert.Equal(t, 10, got.Width)
	assert.Equal(t, 8, got.Height)
	assert.True(t, got.Complete)
	assert.Len(t, got.Cells, 80)
	for _, c := range got.Cells {
		assert.True(t, c.Collapsed)
	}
}

func TestCreateMap_SameNameSameMap(t *testing.T) {
	h := newTestServer(t, false)
	body := `{"theme":"fantasy","width":12,"height":9,"name":"Quiet Harbor"}`

	var first, second MapResponse
	require.NoError(t, json.Unmarshal(do(t, h, http.MethodPost, "/api/maps", body).Body.Bytes(), &first))
	require.NoError(t, json.Unmarshal(do(t, h, http.MethodPost, "/api/maps", body).Body.Bytes(), &second))
	assert.Equal(t, first.Seed, second.Seed)
	assert.Equal(t, first.Cells, second.Cells)
	assert.Equal(t, first.Locations, second.Locations)
}

func TestCreateMap_ArchivesAndGets(t *testing.T) {
	h := newTestServer(t, true)

	rec := do(t, h, http.MethodPost, "/api/maps", `{"theme":"fantasy","width":10,"height":8,"seed":42}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created MapResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, int64(42), created.Seed)
	assert.NotEmpty(t, created.Name)

	rec = do(t, h, http.MethodGet, "/api/maps/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got persistence.MapRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Cells, got.Cells)

	rec = do(t, h, http.MethodGet, "/api/maps", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []persistence.MapSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestCreateMap_BadRequests(t *testing.T) {
	h := newTestServer(t, false)
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"not json", `{`, http.StatusBadRequest},
		{"unknown field", `{"theme":"fantasy","width":4,"height":4,"colour":"red"}`, http.StatusBadRequest},
		{"zero width", `{"theme":"fantasy","width":0,"height":4}`, http.StatusBadRequest},
		{"too tall", `{"theme":"fantasy","width":4,"height":257}`, http.StatusBadRequest},
		{"unknown theme", `{"theme":"underwater","width":4,"height":4}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/maps", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}
}

func TestCreateMap_GenerationGivesUp(t *testing.T) {
	for _, sentinel := range []error{wfc.ErrStall, wfc.ErrRestartLimit} {
		gen := failingGenerator{err: fmt.Errorf("generate %q: %w", "x", sentinel)}
		h := New(gen, nil, discard).Routes()
		rec := do(t, h, http.MethodPost, "/api/maps", `{"width":4,"height":4}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeError(t, rec), sentinel.Error())
	}
}

func TestCreateMap_Cancelled(t *testing.T) {
	h := New(failingGenerator{err: context.Canceled}, nil, discard).Routes()
	rec := do(t, h, http.MethodPost, "/api/maps", `{"width":4,"height":4}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestArchiveRoutes_NoStore(t *testing.T) {
	h := newTestServer(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/api/maps", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/api/maps/abc", "").Code)
}

func TestGetMap_NotFound(t *testing.T) {
	rec := do(t, newTestServer(t, true), http.MethodGet, "/api/maps/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Map not found", decodeError(t, rec))
}

func TestListMaps_BadLimit(t *testing.T) {
	h := newTestServer(t, true)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/maps?limit=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/maps?limit=-1", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/maps?limit=5", "").Code)
}
