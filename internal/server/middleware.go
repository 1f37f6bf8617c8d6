package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/osirenko/finch/internal/common"
)

// authedHandler receives the resolved user ID alongside the request.
type authedHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// requireAuth resolves the bearer token to a user. Every auth failure is a
// plain 401 so the client's credential-clearing cascade fires uniformly.
func (s *Server) requireAuth(next authedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "authorization header required", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			http.Error(w, "bearer token required", http.StatusUnauthorized)
			return
		}

		userID, err := s.store.GetSessionUser(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrUnauthorized) {
				http.Error(w, "invalid session token", http.StatusUnauthorized)
				return
			}
			s.logger.Error("Failed to resolve session", "error", err)
			http.Error(w, "failed to query database", http.StatusInternalServerError)
			return
		}

		next(w, r, userID)
	})
}

// bearerToken extracts the raw token for handlers that need it directly.
func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}
