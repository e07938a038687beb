package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/norventa/adminauth"
	"github.com/norventa/adminauth/permission"
)

const pgErrUniqueViolation = "23505"

// CredentialStore is the Postgres adminauth.CredentialStore. Obtain one
// from Store.Credentials.
type CredentialStore struct {
	db *sql.DB
}

var _ adminauth.CredentialStore = (*CredentialStore)(nil)

const adminColumns = `id, email, display_name, role, active,
	password_hash, two_factor_enabled, two_factor_secret, backup_code_hashes,
	created_at, updated_at`

func (s *CredentialStore) Create(ctx context.Context, admin *adminauth.Administrator) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now
	admin.Email = normalizeEmail(admin.Email)

	codes, err := encodeBackupCodes(admin.BackupCodeHashes)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		insert into administrators (`+adminColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, admin.ID, admin.Email, admin.DisplayName, string(admin.Role), admin.Active,
		admin.PasswordHash, admin.TwoFactorEnabled, admin.TwoFactorSecret, codes,
		admin.CreatedAt, admin.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return adminauth.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*adminauth.Administrator, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+adminColumns+` from administrators where id = $1
	`, id)
	return scanAdmin(row)
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*adminauth.Administrator, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+adminColumns+` from administrators where email = $1
	`, normalizeEmail(email))
	return scanAdmin(row)
}

func (s *CredentialStore) Update(ctx context.Context, id string, upd adminauth.AdminUpdate) error {
	if upd.Empty() {
		return nil
	}

	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.DisplayName != nil {
		set("display_name", *upd.DisplayName)
	}
	if upd.Role != nil {
		set("role", string(*upd.Role))
	}
	if upd.Active != nil {
		set("active", *upd.Active)
	}
	if upd.PasswordHash != nil {
		set("password_hash", *upd.PasswordHash)
	}
	if upd.TwoFactorEnabled != nil {
		set("two_factor_enabled", *upd.TwoFactorEnabled)
	}
	if upd.TwoFactorSecret != nil {
		// A pointer to a nil slice clears the column.
		set("two_factor_secret", *upd.TwoFactorSecret)
	}
	if upd.BackupCodeHashes != nil {
		codes, err := encodeBackupCodes(*upd.BackupCodeHashes)
		if err != nil {
			return err
		}
		set("backup_code_hashes", codes)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf("update administrators set %s where id = $%d",
		strings.Join(sets, ", "), len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return adminauth.ErrAdminNotFound
	}
	return nil
}

func scanAdmin(row *sql.Row) (*adminauth.Administrator, error) {
	var (
		admin adminauth.Administrator
		role  string
		codes []byte
	)
	err := row.Scan(&admin.ID, &admin.Email, &admin.DisplayName, &role, &admin.Active,
		&admin.PasswordHash, &admin.TwoFactorEnabled, &admin.TwoFactorSecret, &codes,
		&admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, adminauth.ErrAdminNotFound
		}
		return nil, err
	}

	admin.Role = permission.Role(role)
	if len(codes) > 0 {
		if err := json.Unmarshal(codes, &admin.BackupCodeHashes); err != nil {
			return nil, fmt.Errorf("administrator %s: decode backup codes: %w", admin.ID, err)
		}
	}
	return &admin, nil
}

// encodeBackupCodes always yields a JSON array so the jsonb column never
// holds a bare null.
func encodeBackupCodes(hashes []string) ([]byte, error) {
	if hashes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(hashes)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
