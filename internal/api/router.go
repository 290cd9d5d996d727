package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"aihub/internal/middleware"
)

// RouterConfig carries the transport-level settings the router needs.
type RouterConfig struct {
	JWTSecret          []byte
	APIKey             string
	APIKeyPrincipal    string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// NewRouter assembles the HTTP routes. Health is public; everything under
// /v1 requires authentication.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		}))
	}

	r.Get("/healthz", Healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, cfg.APIKey, cfg.APIKeyPrincipal))

		r.Post("/query", h.SubmitQuery)
		r.Get("/query/result/{id}", h.GetQueryResult)
		r.Get("/query/results", h.ListQueryResults)
		r.Post("/query/cancel/{id}", h.CancelQuery)

		r.Get("/datasets", h.ListDatasets)
		r.Get("/datasets/{id}", h.GetDataset)
		r.Get("/datasets/{id}/schema", h.GetDatasetSchema)
	})

	return r
}
