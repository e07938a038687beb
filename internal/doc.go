// Package internal holds code private to adminauth.
//
// # Sub-packages
//
//   - audit — bounded async event dispatch behind the engine's audit hooks
//
// # What this package must NOT do
//
//   - Export types that appear in the public adminauth API.
//   - Be imported by any package outside the adminauth module.
package internal
