package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/access"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction/entity"
)

// TransactionRepo reads and writes the transactions table. Every read takes
// an owner id (or owner set) that has already been resolved by package
// access; none of these methods look at request input.
type TransactionRepo struct {
	db *sqlx.DB
}

func NewTransactionRepo(db *sqlx.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// EnsureTable creates the transactions table if not exists (idempotent).
func (r *TransactionRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS transactions (
  id UUID PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL CHECK (type IN ('INCOME','EXPENSE')),
  amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
  category_id UUID NOT NULL,
  subcategory_id UUID,
  vendor TEXT,
  description TEXT,
  transaction_date TIMESTAMPTZ NOT NULL,
  is_recurring BOOLEAN NOT NULL DEFAULT false,
  recurring_pattern TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  deleted_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, transaction_date DESC);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const txColumns = `id, user_id, type, amount, category_id, subcategory_id, vendor, description,
	transaction_date, is_recurring, recurring_pattern, created_at, updated_at, deleted_at`

// List returns one page of ownerID's live transactions plus the total count.
func (r *TransactionRepo) List(ctx context.Context, ownerID string, f entity.Filter) ([]entity.Transaction, int, error) {
	where := []string{"user_id = $1", "deleted_at IS NULL"}
	args := []any{ownerID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.From != nil {
		add("transaction_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("transaction_date <= $%d", *f.To)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.CategoryID != "" {
		add("category_id = $%d", f.CategoryID)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM transactions WHERE `+cond, args...); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY transaction_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		txColumns, cond, len(args)+1, len(args)+2)
	out := []entity.Transaction{}
	if err := r.db.SelectContext(ctx, &out, q, append(args, f.Limit, f.Offset())...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get returns a live transaction owned by ownerID or sql.ErrNoRows.
func (r *TransactionRepo) Get(ctx context.Context, ownerID, id string) (*entity.Transaction, error) {
	var t entity.Transaction
	q := `SELECT ` + txColumns + ` FROM transactions WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &t, q, id, ownerID); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts t and fills its timestamps.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	const q = `INSERT INTO transactions (id, user_id, type, amount, category_id, subcategory_id, vendor, description, transaction_date, is_recurring, recurring_pattern)
		VALUES (:id, :user_id, :type, :amount, :category_id, :subcategory_id, :vendor, :description, :transaction_date, :is_recurring, :recurring_pattern)
		RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, q, t)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&t.CreatedAt, &t.UpdatedAt)
	}
	return rows.Err()
}

// Update overwrites the mutable columns of a live row owned by t.UserID.
// It returns the number of rows touched.
func (r *TransactionRepo) Update(ctx context.Context, t *entity.Transaction) (int64, error) {
	t.UpdatedAt = time.Now().UTC()
	const q = `UPDATE transactions SET type=:type, amount=:amount, category_id=:category_id, subcategory_id=:subcategory_id,
		vendor=:vendor, description=:description, transaction_date=:transaction_date, is_recurring=:is_recurring,
		recurring_pattern=:recurring_pattern, updated_at=:updated_at
		WHERE id=:id AND user_id=:user_id AND deleted_at IS NULL`
	res, err := r.db.NamedExecContext(ctx, q, t)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SoftDelete stamps deleted_at on a live row owned by ownerID.
func (r *TransactionRepo) SoftDelete(ctx context.Context, ownerID, id string) (int64, error) {
	const q = `UPDATE transactions SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Totals aggregates income and expense per owner. An unrestricted owner set
// applies no owner filter at all.
func (r *TransactionRepo) Totals(ctx context.Context, owners access.OwnerSet, from, to *time.Time) ([]entity.OwnerTotals, error) {
	where := []string{"deleted_at IS NULL"}
	var args []any
	if !owners.Unrestricted() {
		where = append(where, "user_id IN (?)")
		args = append(args, []string(owners))
	}
	if from != nil {
		where = append(where, "transaction_date >= ?")
		args = append(args, *from)
	}
	if to != nil {
		where = append(where, "transaction_date <= ?")
		args = append(args, *to)
	}
	q := `SELECT user_id,
		COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0) AS income,
		COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE'), 0) AS expense,
		COUNT(*) AS count
		FROM transactions WHERE ` + strings.Join(where, " AND ") + ` GROUP BY user_id ORDER BY user_id`

	if !owners.Unrestricted() {
		var err error
		q, args, err = sqlx.In(q, args...)
		if err != nil {
			return nil, err
		}
	}
	out := []entity.OwnerTotals{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return out, nil
}
