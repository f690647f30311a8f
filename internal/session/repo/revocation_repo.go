package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// RevocationRepo stores the ids of signed-out session tokens until they
// would have expired anyway.
type RevocationRepo struct {
	db *sqlx.DB
}

func NewRevocationRepo(db *sqlx.DB) *RevocationRepo {
	return &RevocationRepo{db: db}
}

// EnsureTable creates the revoked_sessions table if not exists (idempotent).
func (r *RevocationRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS revoked_sessions (
  token_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  expires_at TIMESTAMPTZ NOT NULL,
  revoked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_revoked_sessions_expires_at ON revoked_sessions(expires_at);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Revoke records tokenID. Revoking twice is not an error.
func (r *RevocationRepo) Revoke(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	const q = `INSERT INTO revoked_sessions (token_id, user_id, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (token_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, tokenID, userID, expiresAt)
	return err
}

func (r *RevocationRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowxContext(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_sessions WHERE token_id = $1)`, tokenID).Scan(&exists)
	return exists, err
}

// Purge removes rows whose token has expired.
func (r *RevocationRepo) Purge(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
