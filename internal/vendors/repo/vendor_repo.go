package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/vendors/entity"
)

type VendorRepo struct {
	db *sqlx.DB
}

func NewVendorRepo(db *sqlx.DB) *VendorRepo {
	return &VendorRepo{db: db}
}

// EnsureTable creates the vendors table if not exists (idempotent).
func (r *VendorRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS vendors (
  id UUID PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'GENERAL',
  sort_order INTEGER NOT NULL DEFAULT 0,
  is_active BOOLEAN NOT NULL DEFAULT true,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_vendors_user_sort ON vendors(user_id, sort_order);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// List returns ownerID's active vendors, optionally of one kind.
func (r *VendorRepo) List(ctx context.Context, ownerID string, kind entity.Kind) ([]entity.Vendor, error) {
	q := `SELECT id, user_id, name, type, sort_order, is_active, created_at, updated_at
		FROM vendors WHERE user_id=$1 AND is_active`
	args := []any{ownerID}
	if kind != "" {
		q += ` AND type=$2`
		args = append(args, string(kind))
	}
	q += ` ORDER BY sort_order ASC, name ASC`
	out := []entity.Vendor{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts v and fills its timestamps.
func (r *VendorRepo) Create(ctx context.Context, v *entity.Vendor) error {
	const q = `INSERT INTO vendors (id, user_id, name, type, sort_order, is_active)
		VALUES (:id, :user_id, :name, :type, :sort_order, :is_active)
		RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, q, v)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&v.CreatedAt, &v.UpdatedAt)
	}
	return rows.Err()
}
