// Package api implements the Vitalscope HTTP API. Read endpoints serve
// straight from the result cache and never recompute.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/vitalscope/vitalscope/internal/cache"
	"github.com/vitalscope/vitalscope/internal/refresh"
	"github.com/vitalscope/vitalscope/pkg/health"
)

// Refresher triggers a refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context, period health.Period) (refresh.Result, error)
}

// Config wires a Handler. Refresher may be nil, which disables
// POST /api/v1/refresh.
type Config struct {
	Cache          *cache.Cache
	Refresher      Refresher
	APIKey         string
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// Handler is the top-level API handler.
type Handler struct {
	cache     *cache.Cache
	refresher Refresher
	log       zerolog.Logger
	router    chi.Router
	now       func() time.Time
}

// NewHandler creates a Handler with its routes registered.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		cache:     cfg.Cache,
		refresher: cfg.Refresher,
		log:       cfg.Logger.With().Str("component", "api").Logger(),
		router:    chi.NewRouter(),
		now:       time.Now,
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h.router.Use(middleware.Recoverer)
	h.router.Use(middleware.RequestID)
	h.router.Use(h.logRequests)
	h.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	h.registerRoutes(cfg.APIKey)
	return h
}

func (h *Handler) registerRoutes(apiKey string) {
	h.router.Get("/healthz", h.handleHealth)

	h.router.Route("/api/v1", func(r chi.Router) {
		// Read endpoints
		r.Get("/score", h.handleScore)
		r.Get("/tier", h.handleTier)
		r.Get("/breakdown", h.handleBreakdown)
		r.Get("/narrative", h.handleNarrative)
		r.Get("/weekly", h.handleWeekly)
		r.Get("/history", h.handleHistory)
		r.Get("/notification", h.handleNotification)
		r.Get("/device", h.handleDevice)

		// Write endpoints (auth-protected)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(apiKey))
			r.Post("/reveal/consume", h.handleConsumeReveal)
			r.Post("/refresh", h.handleRefresh)
			r.Delete("/cache", h.handleClearCache)
		})
	})
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
