package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/sungwon/newsmail/internal/metrics"
)

// keyVerifier checks bearer keys against a bcrypt hash and remembers the
// digest of the last accepted key so bcrypt runs once per key.
type keyVerifier struct {
	hash string

	mu       sync.RWMutex
	accepted [sha256.Size]byte
	hasKey   bool
}

func (v *keyVerifier) verify(key string) bool {
	digest := sha256.Sum256([]byte(key))

	v.mu.RLock()
	cached := v.hasKey && subtle.ConstantTimeCompare(digest[:], v.accepted[:]) == 1
	v.mu.RUnlock()
	if cached {
		return true
	}

	if VerifyAPIKey(v.hash, key) != nil {
		return false
	}

	v.mu.Lock()
	v.accepted = digest
	v.hasKey = true
	v.mu.Unlock()
	return true
}

// BearerAPIKey returns an HTTP middleware that requires
// "Authorization: Bearer <key>" where key matches the bcrypt hash.
// An empty hash disables authentication.
func BearerAPIKey(hash string) func(http.Handler) http.Handler {
	v := &keyVerifier{hash: hash}

	return func(next http.Handler) http.Handler {
		if hash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, `{"error":"authorization header required"}`)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, `{"error":"invalid authorization format, expected Bearer <token>"}`)
				return
			}

			apiKey := parts[1]
			if apiKey == "" {
				unauthorized(w, `{"error":"empty API key"}`)
				return
			}

			if !v.verify(apiKey) {
				unauthorized(w, `{"error":"invalid API key"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, body string) {
	metrics.APIAuthFailuresTotal.Inc()
	http.Error(w, body, http.StatusUnauthorized)
}
