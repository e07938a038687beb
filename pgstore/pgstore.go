package pgstore

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store wraps one database handle and vends the credential and session
// store implementations that share it.
type Store struct {
	db *sql.DB
}

// Open connects via the pgx stdlib driver and applies pool settings
// sized for an admin application.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle. The caller keeps ownership of the
// pool configuration and of Close.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Credentials returns the administrator store backed by this handle.
func (s *Store) Credentials() *CredentialStore {
	return &CredentialStore{db: s.db}
}

// Sessions returns the refresh session store backed by this handle.
func (s *Store) Sessions() *SessionStore {
	return &SessionStore{db: s.db}
}

// Schema is the DDL for both tables. It is idempotent; EnsureSchema
// applies it. Deployments with real migration tooling can feed it to
// their own pipeline instead.
const Schema = `
create table if not exists administrators (
    id                 text primary key,
    email              text not null unique,
    display_name       text not null default '',
    role               text not null,
    active             boolean not null default true,
    password_hash      text not null,
    two_factor_enabled boolean not null default false,
    two_factor_secret  bytea,
    backup_code_hashes jsonb not null default '[]',
    created_at         timestamptz not null default now(),
    updated_at         timestamptz not null default now()
);

create table if not exists admin_refresh_sessions (
    id         text primary key,
    admin_id   text not null,
    token_hash text not null unique,
    ip         text not null default '',
    user_agent text not null default '',
    expires_at timestamptz not null,
    revoked    boolean not null default false,
    created_at timestamptz not null default now()
);

create index if not exists admin_refresh_sessions_admin_idx
    on admin_refresh_sessions (admin_id) where not revoked;

create index if not exists admin_refresh_sessions_expires_idx
    on admin_refresh_sessions (expires_at);
`

// EnsureSchema creates the tables and indexes when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}
