// Package server exposes map generation and the map archive over HTTP.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ill13/wfc-softrender/pkg/game/generator"
	"github.com/ill13/wfc-softrender/pkg/game/persistence"
)

// Store is the archive the server saves generated maps to.
type Store interface {
	SaveResult(res *generator.Result) (*persistence.MapRecord, error)
	Get(id string) (*persistence.MapRecord, error)
	List(limit int) ([]persistence.MapSummary, error)
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	gen   generator.GridGenerator
	store Store
	log   *slog.Logger

	// MaxRestarts is passed to every generation request.
	MaxRestarts int
}

// New creates a server. store may be nil, in which case generated maps are
// not archived and the archive routes answer 503.
func New(gen generator.GridGenerator, store Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{gen: gen, store: store, log: log}
}

// Routes configures and returns the HTTP router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler)

		r.Route("/themes", func(r chi.Router) {
			r.Get("/", s.listThemes)
			r.Get("/{name}", s.getTheme)
		})

		r.Route("/maps", func(r chi.Router) {
			r.Post("/", s.createMap)
			r.Get("/", s.listMaps)
			r.Get("/{id}", s.getMap)
		})
	})

	return r
}

// requestLogger logs one line per request with its status and duration
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("error encoding response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
