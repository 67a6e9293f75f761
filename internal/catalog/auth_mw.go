package catalog

import (
	"context"
	"net/http"

	"ProductCatalog/internal/auth"
	"ProductCatalog/pkg/kit"
)

type ctxKey string

const (
	userKey ctxKey = "user"
	bodyKey ctxKey = "body"
)

// TokenParser verifies a bearer token. *auth.TokenMaker satisfies it.
type TokenParser interface {
	Parse(token string) (auth.Claims, error)
}

type User struct {
	ID   string
	Role string
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

// AuthJWT is the pass/fail gate in front of every product route.
func AuthJWT(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := tokens.Parse(tok)
			if err != nil || claims.UserID == "" {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, User{ID: claims.UserID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
