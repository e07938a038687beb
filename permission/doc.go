// Package permission implements the static role-based access control table used
// by adminauth authorization checks.
//
// # Model
//
// A permission is a (resource, action) pair. Action "manage" on a resource
// subsumes every other action on it, and the wildcard resource "*" paired with
// "manage" subsumes every permission system-wide. The role table is fixed at
// compile time: four tiers (super-administrator, administrator, editor, viewer)
// over the admin application's resources (catalog, quotes, administrators,
// audit). The table is built once during package init and never mutated.
//
// # Architecture boundaries
//
// This package is a pure in-memory lookup with no I/O and no state beyond the
// init-built table. [HasPermission] is safe for unlimited concurrent callers.
//
// # What this package must NOT do
//
//   - Load roles or permissions from a store (the table is not per-tenant data).
//   - Expose any mutation of the role table after init.
//   - Import adminauth, jwt, or session.
package permission
