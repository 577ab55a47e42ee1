package middleware

import (
	"context"
	"net/http"

	"github.com/ayush/research-ai-agent/assistant/internal/auth"
	"github.com/ayush/research-ai-agent/assistant/internal/httpx"
)

// SessionLookup resolves a session ID to a user ID ("" when unknown).
type SessionLookup interface {
	Get(ctx context.Context, sessionID string) (string, error)
}

// RequireAuth validates the session cookie and puts the user ID on the
// request context.
func RequireAuth(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			userID, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil || userID == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "session expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}
