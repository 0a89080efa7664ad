package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectUser = `SELECT id, email, password_hash, name, country, confirmed, must_change_password, token_version FROM users`

func (r *SQLiteRepository) Create(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, country, confirmed, must_change_password, token_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, normalizeEmail(u.Email), u.PasswordHash, u.Name, u.Country, u.Confirmed, u.MustChangePassword, u.TokenVersion)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUser+` WHERE email = ?`, normalizeEmail(email)))
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
}

func (r *SQLiteRepository) Confirm(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET confirmed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to confirm user: %w", err)
	}
	return requireAffected(res)
}

// BumpTokenVersion increments the user's token version and returns the new value.
func (r *SQLiteRepository) BumpTokenVersion(ctx context.Context, id string) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET token_version = token_version + 1 WHERE id = ? RETURNING token_version`, id,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to bump token version: %w", err)
	}
	return version, nil
}

func (r *SQLiteRepository) scanOne(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Country, &u.Confirmed, &u.MustChangePassword, &u.TokenVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
