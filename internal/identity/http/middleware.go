package http

import (
	"context"
	"net/http"
	"strings"

	commonhttp "github.com/AlibekovAA/linkmark/internal/common/http"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
	identitydomain "github.com/AlibekovAA/linkmark/internal/identity/domain"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identitydomain.Identity, error)
}

type contextKey string

const identityKey contextKey = "identity"

// RequireIdentity rejects requests without a valid bearer token and stores the
// resolved identity in the request context.
func RequireIdentity(auth Authenticator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := auth.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				commonhttp.HandleError(w, r, err, log)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) (identitydomain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(identitydomain.Identity)
	return identity, ok
}

func bearerToken(r *http.Request) string {
	raw := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(raw, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
