package entity

import "time"

// Kind mirrors the transaction type a category applies to.
type Kind string

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

func (k Kind) Valid() bool { return k == KindIncome || k == KindExpense }

// Category is an owner's income or expense category. A row with ParentID set
// is a subcategory of that parent and inherits its Kind.
type Category struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	ParentID  *string   `db:"parent_id" json:"parentId,omitempty"`
	Name      string    `db:"name" json:"name"`
	Type      Kind      `db:"type" json:"type"`
	Color     string    `db:"color" json:"color"`
	SortOrder int       `db:"sort_order" json:"sortOrder"`
	IsDefault bool      `db:"is_default" json:"isDefault"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewCategory builds an active top-level category.
func NewCategory(id, userID, name string, kind Kind, color string, sortOrder int, isDefault bool) *Category {
	return &Category{ID: id, UserID: userID, Name: name, Type: kind, Color: color, SortOrder: sortOrder, IsDefault: isDefault, IsActive: true}
}
