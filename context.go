package adminauth

import "context"

type identityContextKey struct{}

// ContextWithIdentity attaches a verified identity to ctx. The
// middleware package uses it to hand the identity to downstream
// handlers after RequireAuth.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity stored by
// ContextWithIdentity, or nil when the request is unauthenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
