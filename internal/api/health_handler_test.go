package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sungwon/newsmail/internal/provider"
)

func TestHealthzHandler_AlwaysOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	HealthzHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}

	ct := rec.Header().Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
}

func TestReadyzHandler(t *testing.T) {
	tests := []struct {
		name       string
		healthErr  error
		deps       map[string]Pinger
		wantStatus int
	}{
		{"all healthy", nil, map[string]Pinger{"database": mockPinger{}}, http.StatusOK},
		{"no optional deps", nil, nil, http.StatusOK},
		{"provider unhealthy", errUnavailable, nil, http.StatusServiceUnavailable},
		{"database down", nil, map[string]Pinger{"database": mockPinger{err: errUnavailable}}, http.StatusServiceUnavailable},
		{"nil dependency skipped", nil, map[string]Pinger{"redis": nil}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := provider.NewRegistry()
			reg.Register(&mockProvider{name: "smtp", healthErr: tt.healthErr})

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rec := httptest.NewRecorder()
			ReadyzHandler(reg, tt.deps).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusServiceUnavailable && rec.Header().Get("Retry-After") != "30" {
				t.Error("expected Retry-After header")
			}

			var resp struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			check, ok := resp.Checks["provider:smtp"]
			if !ok {
				t.Fatalf("expected provider check in %v", resp.Checks)
			}
			if tt.healthErr == nil && check != "ok" {
				t.Errorf("expected healthy provider to report ok, got %q", check)
			}
			if tt.healthErr != nil && check != tt.healthErr.Error() {
				t.Errorf("expected provider error %q, got %q", tt.healthErr, check)
			}
		})
	}
}
