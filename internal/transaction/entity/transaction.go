package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type distinguishes income from expense.
type Type string

const (
	TypeIncome  Type = "INCOME"
	TypeExpense Type = "EXPENSE"
)

func (t Type) Valid() bool { return t == TypeIncome || t == TypeExpense }

// Transaction is one ledger entry owned by UserID.
type Transaction struct {
	ID               string          `db:"id" json:"id"`
	UserID           string          `db:"user_id" json:"userId"`
	Type             Type            `db:"type" json:"type"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	CategoryID       string          `db:"category_id" json:"categoryId"`
	SubcategoryID    *string         `db:"subcategory_id" json:"subcategoryId,omitempty"`
	Vendor           *string         `db:"vendor" json:"vendor,omitempty"`
	Description      *string         `db:"description" json:"description,omitempty"`
	TransactionDate  time.Time       `db:"transaction_date" json:"transactionDate"`
	IsRecurring      bool            `db:"is_recurring" json:"isRecurring"`
	RecurringPattern *string         `db:"recurring_pattern" json:"recurringPattern,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
	DeletedAt        *time.Time      `db:"deleted_at" json:"-"`
}

// Filter narrows a listing. Zero values mean "no constraint".
type Filter struct {
	From       *time.Time
	To         *time.Time
	Type       Type
	CategoryID string
	Page       int
	Limit      int
}

// Offset is the row offset for Page/Limit (pages are 1-based).
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// OwnerTotals aggregates one owner's non-deleted transactions.
type OwnerTotals struct {
	UserID  string          `db:"user_id" json:"userId"`
	Income  decimal.Decimal `db:"income" json:"income"`
	Expense decimal.Decimal `db:"expense" json:"expense"`
	Count   int             `db:"count" json:"count"`
}

// Balance is income minus expense.
func (o OwnerTotals) Balance() decimal.Decimal {
	return o.Income.Sub(o.Expense)
}
