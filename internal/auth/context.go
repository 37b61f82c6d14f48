package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const ContextKeySession ContextKey = "session"

func ContextWithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, session)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(ContextKeySession).(Session)
	return session, ok
}

// WithToken returns middleware that resolves the session token in headerName
// and stores the session in the request context. Requests without a valid
// token pass through anonymously.
func WithToken(tokens *TokenStore, headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get(headerName), "Bearer "))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := tokens.Lookup(token)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Ignoring session token")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
		})
	}
}
