package middleware

import (
	"net/http"
	"strings"

	"github.com/norventa/adminauth"
)

// RequireAuth wraps a handler so it only runs for requests carrying a
// valid access token. The verified identity is placed on the request
// context; handlers read it back with adminauth.IdentityFromContext.
//
// Requests without a Bearer token, or with a token the engine rejects,
// receive 401 without reaching the wrapped handler.
func RequireAuth(engine *adminauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := engine.VerifyAccessToken(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := adminauth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential from an Authorization header
// value. The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) <= len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}
	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}
