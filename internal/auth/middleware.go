package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the session value.
type contextKey string

const sessionKey contextKey = "session"

// SessionCookie is the name of the HttpOnly cookie carrying the token.
const SessionCookie = "token"

// RequireAuth enforces a valid member or admin session on protected routes.
// It reads the JWT from the session cookie, validates it, and stores the
// Session in the request context. Missing or invalid tokens end the chain
// with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := extractSession(r, tokens)
			if err != nil {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces an admin session. Member tokens get 401 as well —
// the admin console is a separate surface, not an escalation of a member
// login.
func RequireAdmin(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := extractSession(r, tokens)
			if err != nil || sess.Role != RoleAdmin {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
}

func extractSession(r *http.Request, tokens *TokenService) (*Session, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, err
	}
	return tokens.Validate(cookie.Value)
}

// SessionFromContext returns the session stored by RequireAuth/RequireAdmin.
// ok is false on routes that skipped the middleware.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok
}
