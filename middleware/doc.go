// Package middleware provides net/http guards for the admin app's
// protected routes.
//
// # Guards
//
//   - RequireAuth: the request must carry a valid Bearer access token.
//     The verified identity is injected into the request context.
//   - RequirePermission: RequireAuth plus a role check for one
//     resource/action pair. Use it on mutating routes.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does not
// parse tokens, evaluate roles, or touch storage itself; all of that
// belongs to the engine and the permission package. Handlers downstream
// of a guard read the caller with adminauth.IdentityFromContext.
//
// # What this package must not do
//
//   - No session refresh. Refresh is a POST endpoint the app wires
//     explicitly, never something a guard does behind a handler's back.
//   - No response bodies beyond the plain-text status line. Error
//     rendering is the app's concern.
//   - No logging. The engine already audits authentication failures
//     where they can be attributed.
package middleware
