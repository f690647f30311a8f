package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/user/entity"
)

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT,
  email CITEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'USER',
  last_login_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_name ON users(name);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const userColumns = `id, name, email, role, last_login_at, created_at, updated_at`

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, name, email, role) VALUES (:id, :name, :email, :role)
		RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, q, u)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&u.CreatedAt, &u.UpdatedAt)
	}
	return rows.Err()
}

// GetByID returns a user or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user matched by email (case-insensitive due to citext) or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email=$1`, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListMembers returns every household member ordered by name.
func (r *UserRepo) ListMembers(ctx context.Context) ([]entity.Member, error) {
	out := []entity.Member{}
	if err := r.db.SelectContext(ctx, &out, `SELECT id, name, email FROM users ORDER BY name ASC NULLS LAST, email ASC`); err != nil {
		return nil, err
	}
	return out, nil
}

// TouchLastLogin stamps last_login_at.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id string) error {
	const q = `UPDATE users SET last_login_at=NOW(), updated_at=NOW() WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// SetRole changes a member's role.
func (r *UserRepo) SetRole(ctx context.Context, id, role string) (int64, error) {
	const q = `UPDATE users SET role=$2, updated_at=NOW() WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, role)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
