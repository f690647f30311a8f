package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/audit/entity"
)

type AuditRepo struct {
	db *sqlx.DB
}

func NewAuditRepo(db *sqlx.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// EnsureTable creates the audit_logs table if it does not already exist.
func (r *AuditRepo) EnsureTable(ctx context.Context) error {
	const tbl = `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGINT PRIMARY KEY,
		user_id TEXT NOT NULL,
		action varchar(16) NOT NULL,
		entity_type varchar(32) NOT NULL,
		entity_id TEXT NOT NULL,
		before_data JSONB,
		after_data JSONB,
		ip_address TEXT,
		user_agent TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return err
	}

	const idx = `
	CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs (user_id);
	`
	if _, err := r.db.ExecContext(ctx, idx); err != nil {
		return err
	}

	const idxEntity = `
	CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id);
	`
	_, err := r.db.ExecContext(ctx, idxEntity)
	return err
}

// Insert writes one entry.
func (r *AuditRepo) Insert(ctx context.Context, e *entity.Entry) error {
	const q = `INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, before_data, after_data, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.UserID, e.Action, e.EntityType, e.EntityID,
		nullJSON(e.BeforeData), nullJSON(e.AfterData), e.IPAddress, e.UserAgent, e.CreatedAt)
	return err
}

// nullJSON maps an absent snapshot to SQL NULL.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// ListByEntity returns the history of one entity, newest first.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]entity.Entry, error) {
	const q = `SELECT id, user_id, action, entity_type, entity_id,
		COALESCE(before_data, 'null'::jsonb) AS before_data, COALESCE(after_data, 'null'::jsonb) AS after_data,
		ip_address, user_agent, created_at
		FROM audit_logs WHERE entity_type=$1 AND entity_id=$2 ORDER BY created_at DESC, id DESC`
	out := []entity.Entry{}
	if err := r.db.SelectContext(ctx, &out, q, entityType, entityID); err != nil {
		return nil, err
	}
	return out, nil
}
