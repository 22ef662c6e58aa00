package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/trucogame/internal/services/auth"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
)

// GetSession retrieves the authenticated session from the request context
// Returns nil if no session is authenticated
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// Auth returns middleware that requires a valid session token.
// EventSource cannot set headers, so the token may also come from the
// "token" query parameter.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromRequest(r, authService)
			if session == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(r *http.Request, authService *auth.Service) *auth.Session {
	token := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	} else if cookie, err := r.Cookie("session"); err == nil {
		token = cookie.Value
	} else {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil
	}

	session, err := authService.ValidateSession(token)
	if err != nil {
		return nil
	}
	return session
}
