package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sungwon/newsmail/internal/provider"
)

// Pinger is a dependency whose connectivity gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthzHandler handles GET /healthz.
// Always returns 200 OK with {"status":"ok"}.
func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler handles GET /readyz.
// Checks every registered mail provider and each optional dependency.
// Returns 200 if all are healthy, 503 with Retry-After header otherwise.
func ReadyzHandler(providers *provider.Registry, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := make(map[string]string)
		healthy := true

		if providers != nil {
			for name, err := range providers.HealthCheck(ctx) {
				if err != nil {
					checks["provider:"+name] = err.Error()
					healthy = false
				} else {
					checks["provider:"+name] = "ok"
				}
			}
		}
		for name, p := range deps {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = err.Error()
				healthy = false
			} else {
				checks[name] = "ok"
			}
		}

		if !healthy {
			w.Header().Set("Retry-After", "30")
			respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unavailable",
				"checks": checks,
			})
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"checks": checks,
		})
	}
}
