package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sungwon/newsmail/internal/dispatch"
)

const maxWelcomeBodyBytes = 64 << 10

var errEmptyBody = errors.New("empty request body")

// decodeJSON reads at most limit bytes of JSON from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return json.NewDecoder(r.Body).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondValidationErrors writes a 400 with one detail per rejected field.
func respondValidationErrors(w http.ResponseWriter, details []string) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   "validation_failed",
		"details": details,
	})
}

// respondReport writes a batch report: 200 when it succeeded, 502 when a
// send failed downstream.
func respondReport(w http.ResponseWriter, report dispatch.Report) {
	status := http.StatusOK
	if !report.Success {
		status = http.StatusBadGateway
	}
	respondJSON(w, status, report)
}
