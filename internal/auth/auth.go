// Package auth guards the relay's API routes with a static access key.
// The plain key is bcrypt-hashed once at startup and only the hash is kept
// in memory for the daemon's lifetime.
package auth

import (
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// HeaderName carries the access key on client requests.
const HeaderName = "X-Access-Key"

// Guard verifies the access key header on protected routes.
type Guard struct {
	hash []byte
}

// NewGuard hashes the configured key. An empty key returns a nil Guard,
// which disables the check.
func NewGuard(accessKey string) (*Guard, error) {
	if accessKey == "" {
		return nil, nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(accessKey), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth.NewGuard: %w", err)
	}
	return &Guard{hash: h}, nil
}

// Check reports whether the presented key matches.
func (g *Guard) Check(key string) bool {
	if g == nil {
		return true
	}
	return bcrypt.CompareHashAndPassword(g.hash, []byte(key)) == nil
}

// Require wraps next with the access key check. A nil Guard passes all
// requests through.
func (g *Guard) Require(next http.Handler) http.Handler {
	if g == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Check(r.Header.Get(HeaderName)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
