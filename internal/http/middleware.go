package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookieName = "sessionId"
	SessionHeaderName = "X-Session-ID"
	sessionCookieAge  = 30 * 24 * time.Hour
)

type ctxKey int

const sessionKeyCtx ctxKey = iota

type sessionIdentity struct {
	key    string
	secure bool
}

// SessionMiddleware reads the session key from the sessionId cookie or the
// X-Session-ID header. The key may still be empty; ResolveSessionKey issues
// one when the request carries no explicit id either.
func SessionMiddleware(secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := &sessionIdentity{secure: secureCookie}
			if c, err := r.Cookie(SessionCookieName); err == nil {
				id.key = strings.TrimSpace(c.Value)
			}
			if id.key == "" {
				id.key = strings.TrimSpace(r.Header.Get(SessionHeaderName))
			}

			ctx := context.WithValue(r.Context(), sessionKeyCtx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveSessionKey picks the session key for a request: an explicit id from
// the body wins, then the cookie or header. With none of them a new key is
// issued as a cookie. Must run before the response is written.
func ResolveSessionKey(w http.ResponseWriter, r *http.Request, explicit string) string {
	if key := strings.TrimSpace(explicit); key != "" {
		return key
	}

	id, _ := r.Context().Value(sessionKeyCtx).(*sessionIdentity)
	if id == nil {
		id = &sessionIdentity{}
	}
	if id.key != "" {
		return id.key
	}

	id.key = uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id.key,
		Path:     "/",
		MaxAge:   int(sessionCookieAge.Seconds()),
		HttpOnly: true,
		Secure:   id.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id.key
}

// SessionKeyFromContext returns the cookie or header key, or the key issued
// earlier in the request.
func SessionKeyFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKeyCtx).(*sessionIdentity); ok {
		return id.key
	}
	return ""
}

// issueSession makes sure page loads carry a session cookie before the first chat call.
func issueSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ResolveSessionKey(w, r, "")
		next.ServeHTTP(w, r)
	})
}
