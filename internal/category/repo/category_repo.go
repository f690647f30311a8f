package repo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/category/entity"
)

// CategoryRepo is the repository for categories backed by PostgreSQL.
type CategoryRepo struct {
	db *sqlx.DB
}

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// EnsureTable ensures the categories table and its indexes exist.
// Fields:
// - id uuid PRIMARY KEY
// - user_id text (indexed with sort_order)
// - parent_id uuid, NULL for top-level rows (indexed)
func (r *CategoryRepo) EnsureTable(ctx context.Context) error {
	var tblName sql.NullString
	if err := r.db.QueryRowContext(ctx, "SELECT to_regclass('public.categories')").Scan(&tblName); err != nil {
		return err
	}
	if !tblName.Valid {
		createTable := `CREATE TABLE categories (
			id uuid PRIMARY KEY,
			user_id text NOT NULL,
			parent_id uuid REFERENCES categories(id),
			name text NOT NULL,
			type text NOT NULL CHECK (type IN ('INCOME','EXPENSE')),
			color varchar(16) NOT NULL DEFAULT '#000000',
			sort_order integer NOT NULL DEFAULT 0,
			is_default boolean NOT NULL DEFAULT false,
			is_active boolean NOT NULL DEFAULT true,
			created_at timestamptz NOT NULL DEFAULT NOW(),
			updated_at timestamptz NOT NULL DEFAULT NOW()
		)`
		if _, err := r.db.ExecContext(ctx, createTable); err != nil {
			return err
		}
	}

	indexes := map[string]string{
		"idx_categories_user_sort": `CREATE INDEX idx_categories_user_sort ON categories (user_id, sort_order)`,
		"idx_categories_parent_id": `CREATE INDEX idx_categories_parent_id ON categories (parent_id)`,
	}
	for name, ddl := range indexes {
		var idxName sql.NullString
		if err := r.db.QueryRowContext(ctx, "SELECT to_regclass('public."+name+"')").Scan(&idxName); err != nil {
			return err
		}
		if idxName.Valid {
			continue
		}
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

const columns = `id, user_id, parent_id, name, type, color, sort_order, is_default, is_active, created_at, updated_at`

// List returns ownerID's active top-level categories, optionally of one kind.
func (r *CategoryRepo) List(ctx context.Context, ownerID string, kind entity.Kind) ([]entity.Category, error) {
	q := `SELECT ` + columns + ` FROM categories WHERE user_id=$1 AND parent_id IS NULL AND is_active`
	args := []any{ownerID}
	if kind != "" {
		q += ` AND type=$2`
		args = append(args, string(kind))
	}
	q += ` ORDER BY sort_order ASC, name ASC`
	out := []entity.Category{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a category owned by ownerID or sql.ErrNoRows.
func (r *CategoryRepo) Get(ctx context.Context, ownerID, id string) (*entity.Category, error) {
	var c entity.Category
	q := `SELECT ` + columns + ` FROM categories WHERE id=$1 AND user_id=$2`
	if err := r.db.GetContext(ctx, &c, q, id, ownerID); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChildren returns the active subcategories of parentID.
func (r *CategoryRepo) ListChildren(ctx context.Context, parentID string) ([]entity.Category, error) {
	q := `SELECT ` + columns + ` FROM categories WHERE parent_id=$1 AND is_active ORDER BY sort_order ASC, name ASC`
	out := []entity.Category{}
	if err := r.db.SelectContext(ctx, &out, q, parentID); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts c and fills its timestamps.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	const q = `INSERT INTO categories (id, user_id, parent_id, name, type, color, sort_order, is_default, is_active)
		VALUES (:id, :user_id, :parent_id, :name, :type, :color, :sort_order, :is_default, :is_active)
		RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, q, c)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&c.CreatedAt, &c.UpdatedAt)
	}
	return rows.Err()
}
