package middleware

import (
	"context"
	"net/http"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// EnsureSession resolves the workspace session for a request, creating one
// (and setting the signed cookie) when the request carries none. The session
// is injected into the request context.
func EnsureSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := manager.GetSessionFromRequest(r)
			if s == nil {
				var err error
				s, err = manager.CreateSession()
				if err != nil {
					http.Error(w, "failed to create session", http.StatusInternalServerError)
					return
				}
				manager.SetSessionCookie(w, s)
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetSessionInContext injects a session into a context. Used by tests.
func SetSessionInContext(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// GetSession returns the session from the request context, or nil.
func GetSession(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionContextKey).(*session.Session)
	return s
}

// GetWorkspace returns the workspace from the request context, or nil.
func GetWorkspace(ctx context.Context) *session.Workspace {
	if s := GetSession(ctx); s != nil {
		return s.Workspace
	}
	return nil
}
