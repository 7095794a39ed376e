package httpmw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/auth"
	"github.com/cwrk-planet/chat-service/pkg/httputil"
)

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Auth требует Authorization: Bearer <jwt> и кладёт claims в контекст.
func Auth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				httputil.Error(r.Context(), w, http.StatusUnauthorized, "missing bearer token", nil)
				return
			}

			claims, err := v.ValidateToken(token)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "token expired"
				}
				httputil.Error(r.Context(), w, http.StatusUnauthorized, msg, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return c, ok && c != nil
}

// UserIDFromCtx: "" если запрос не прошёл Auth.
func UserIDFromCtx(ctx context.Context) string {
	if c, ok := ClaimsFromCtx(ctx); ok {
		return c.UserID
	}
	return ""
}
