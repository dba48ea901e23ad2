package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-campaigns/internal/infra/http/middleware"
)

// NewStatusRouter serves /health and /metrics for the running client.
func NewStatusRouter(health *HealthHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/health", health.Handle)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}
