package middleware

import (
	"net/http"

	"github.com/norventa/adminauth"
	"github.com/norventa/adminauth/permission"
)

// RequirePermission wraps a handler so it only runs when the caller is
// authenticated and the caller's role permits the given action on the
// given resource. It layers on RequireAuth: an absent or invalid token
// yields 401, a valid token with an insufficient role yields 403.
func RequirePermission(engine *adminauth.Engine, resource permission.Resource, action permission.Action) func(http.Handler) http.Handler {
	authn := RequireAuth(engine)
	return func(next http.Handler) http.Handler {
		return authn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := adminauth.IdentityFromContext(r.Context())
			if err := engine.Authorize(identity, resource, action); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
