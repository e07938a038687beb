// Package pgstore provides the Postgres-backed credential and refresh
// session stores, via database/sql and the pgx stdlib driver.
//
// One Store wraps the handle; Credentials and Sessions vend the two
// typed stores sharing it. Schema holds the idempotent DDL and
// EnsureSchema applies it for deployments without a migration pipeline.
//
// Revoked session rows stay in place until DeleteExpired collects them,
// so a rotated-then-reused token is still recognizable as reuse rather
// than reported as unknown.
package pgstore
