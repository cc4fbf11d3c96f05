// Package auth guards the bus endpoint with bearer token authentication.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/tunglt-picon/mcpbus/pkg/logging"
)

// TokenVerifier validates a presented bearer token
type TokenVerifier interface {
	Verify(token string) bool
}

// StaticTokenVerifier accepts a single pre-shared token. Comparison is
// constant time.
type StaticTokenVerifier struct {
	token string
}

// NewStaticTokenVerifier creates a verifier for the given token
func NewStaticTokenVerifier(token string) *StaticTokenVerifier {
	return &StaticTokenVerifier{token: token}
}

// Verify reports whether the presented token matches
func (v *StaticTokenVerifier) Verify(token string) bool {
	if v.token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.token), []byte(token)) == 1
}

// Middleware rejects requests lacking a valid Authorization bearer token.
// A nil verifier disables the check and passes everything through.
func Middleware(next http.Handler, verifier TokenVerifier, logger logging.Logger) http.Handler {
	if verifier == nil {
		return next
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok || !verifier.Verify(token) {
			logger.Warn("rejected unauthenticated request",
				logging.String("remote", r.RemoteAddr),
				logging.String("path", r.URL.Path),
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcpbus"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from an Authorization header
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
