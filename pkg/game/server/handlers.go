package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ill13/wfc-softrender/pkg/engine/wfc"
	"github.com/ill13/wfc-softrender/pkg/game/generator"
	"github.com/ill13/wfc-softrender/pkg/game/persistence"
	"github.com/ill13/wfc-softrender/pkg/game/theme"
)

const maxRequestBody = 1 << 16

// MapRequest is the body of POST /api/maps.
type MapRequest struct {
	Theme  string `json:"theme"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name,omitempty"`
	Seed   *int64 `json:"seed,omitempty"`
}

// ThemeSummary is one entry of GET /api/themes.
type ThemeSummary struct {
	Name      string   `json:"name"`
	Terrains  []string `json:"terrains"`
	Locations []string `json:"locations"`
	Templates []string `json:"templates"`
}

// MapResponse is a generated map. ID is empty when there is no archive.
type MapResponse struct {
	*persistence.MapRecord
	Complete  bool  `json:"complete"`
	ElapsedMS int64 `json:"elapsed_ms"`
}

func summarizeTheme(th *theme.Theme) ThemeSummary {
	return ThemeSummary{
		Name:      th.Name,
		Terrains:  th.Elevation.Keys(),
		Locations: th.Locations.Keys(),
		Templates: th.Templates.Keys(),
	}
}

func (s *Server) listThemes(w http.ResponseWriter, r *http.Request) {
	names := theme.Names()
	out := make([]ThemeSummary, 0, len(names))
	for _, name := range names {
		th, err := theme.Load(name)
		if err != nil {
			s.log.Error("builtin theme failed to load", "theme", name, "err", err)
			continue
		}
		out = append(out, summarizeTheme(th))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getTheme(w http.ResponseWriter, r *http.Request) {
	th, err := theme.Load(chi.URLParam(r, "name"))
	if errors.Is(err, theme.ErrUnknownTheme) {
		respondError(w, http.StatusNotFound, "Theme not found")
		return
	}
	if err != nil {
		s.log.Error("load theme", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to load theme")
		return
	}
	respondJSON(w, http.StatusOK, th)
}

func (s *Server) createMap(w http.ResponseWriter, r *http.Request) {
	var req MapRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Theme == "" {
		req.Theme = theme.Default
	}

	th, err := theme.Load(req.Theme)
	if errors.Is(err, theme.ErrUnknownTheme) {
		respondError(w, http.StatusNotFound, "Theme not found")
		return
	}
	if err != nil {
		s.log.Error("load theme", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to load theme")
		return
	}

	res, err := s.gen.Generate(r.Context(), generator.Request{
		Theme:       th,
		Width:       req.Width,
		Height:      req.Height,
		Name:        req.Name,
		Seed:        req.Seed,
		MaxRestarts: s.MaxRestarts,
		Logger:      s.log,
	})
	switch {
	case err == nil:
	case errors.Is(err, generator.ErrBadSize):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, wfc.ErrStall), errors.Is(err, wfc.ErrRestartLimit):
		s.log.Warn("generation gave up", "theme", req.Theme, "err", err)
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.log.Info("generation cancelled", "theme", req.Theme)
		respondError(w, http.StatusServiceUnavailable, "Generation cancelled")
		return
	default:
		s.log.Error("generate map", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate map")
		return
	}

	rec := persistence.RecordFromResult(res)
	if s.store != nil {
		saved, err := s.store.SaveResult(res)
		if err != nil {
			s.log.Error("archive map", "err", err)
			respondError(w, http.StatusInternalServerError, "Failed to archive map")
			return
		}
		rec = saved
	}

	respondJSON(w, http.StatusCreated, MapResponse{
		MapRecord: rec,
		Complete:  res.Grid.IsComplete(),
		ElapsedMS: res.Elapsed.Milliseconds(),
	})
}

func (s *Server) listMaps(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Map archive not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	maps, err := s.store.List(limit)
	if err != nil {
		s.log.Error("list maps", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to list maps")
		return
	}
	respondJSON(w, http.StatusOK, maps)
}

func (s *Server) getMap(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Map archive not configured")
		return
	}

	rec, err := s.store.Get(chi.URLParam(r, "id"))
	if errors.Is(err, persistence.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Map not found")
		return
	}
	if err != nil {
		s.log.Error("get map", "err", err)
		respondError(w, http.StatusInternalServerError, "Failed to get map")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}
