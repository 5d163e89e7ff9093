package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sungwon/newsmail/internal/auth"
	"github.com/sungwon/newsmail/internal/provider"
	"github.com/sungwon/newsmail/internal/step"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Dispatcher  Dispatcher
	Welcome     WelcomeSender
	Provider    provider.Provider
	Providers   *provider.Registry
	Checkpoints step.Store
	// Ready lists optional dependencies checked by /readyz, e.g. "database".
	Ready      map[string]Pinger
	APIKeyHash string
	Logger     zerolog.Logger
}

// NewRouter creates a chi.Mux with all routes, middleware, and handlers configured.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CorrelationIDMiddleware)
	r.Use(LoggingMiddleware(d.Logger))
	r.Use(MetricsMiddleware)
	r.Use(RecoverMiddleware(d.Logger))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", HealthzHandler())
	r.Get("/readyz", ReadyzHandler(d.Providers, d.Ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.BearerAPIKey(d.APIKeyHash))

		r.Post("/news-summaries/dispatch", DispatchHandler(d.Dispatcher, d.Checkpoints, d.Logger))
		r.Post("/welcome", WelcomeHandler(d.Welcome, d.Provider, d.Logger))
	})

	return r
}
