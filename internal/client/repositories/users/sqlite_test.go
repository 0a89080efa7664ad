package users

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE users (
    id                   TEXT PRIMARY KEY,
    email                TEXT NOT NULL UNIQUE,
    password_hash        BLOB NOT NULL,
    name                 TEXT NOT NULL DEFAULT '',
    country              TEXT NOT NULL DEFAULT '',
    confirmed            INTEGER NOT NULL DEFAULT 0,
    must_change_password INTEGER NOT NULL DEFAULT 0,
    token_version        INTEGER NOT NULL DEFAULT 0,
    created_at           TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`)
	require.NoError(t, err)
	return db
}

func sampleUser() *User {
	return &User{
		ID:           "7c0e5d4e-0000-4000-8000-000000000001",
		Email:        "Alice@Example.com ",
		PasswordHash: []byte("hash"),
		Name:         "Alice",
		Country:      "LV",
	}
}

func TestCreateAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, sampleUser()))

	byEmail, err := r.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byEmail.Email)
	assert.Equal(t, "Alice", byEmail.Name)
	assert.Equal(t, "LV", byEmail.Country)
	assert.False(t, byEmail.Confirmed)

	byID, err := r.GetByID(ctx, byEmail.ID)
	require.NoError(t, err)
	assert.Equal(t, byEmail, byID)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, sampleUser()))

	dup := sampleUser()
	dup.ID = "7c0e5d4e-0000-4000-8000-000000000002"
	require.ErrorIs(t, r.Create(ctx, dup), ErrAlreadyExists)
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConfirm(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	u := sampleUser()
	require.NoError(t, r.Create(ctx, u))

	require.NoError(t, r.Confirm(ctx, u.ID))
	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Confirmed)

	require.ErrorIs(t, r.Confirm(ctx, "missing"), ErrNotFound)
}

func TestBumpTokenVersion(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	u := sampleUser()
	require.NoError(t, r.Create(ctx, u))

	v, err := r.BumpTokenVersion(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = r.BumpTokenVersion(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = r.BumpTokenVersion(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
