package entity

import "time"

// Kind classifies a vendor.
type Kind string

const (
	KindGeneral       Kind = "GENERAL"
	KindStore         Kind = "STORE"
	KindRestaurant    Kind = "RESTAURANT"
	KindUtility       Kind = "UTILITY"
	KindMedical       Kind = "MEDICAL"
	KindEntertainment Kind = "ENTERTAINMENT"
	KindOther         Kind = "OTHER"
)

func (k Kind) Valid() bool {
	switch k {
	case KindGeneral, KindStore, KindRestaurant, KindUtility, KindMedical, KindEntertainment, KindOther:
		return true
	}
	return false
}

// Vendor is a payee an owner records transactions against.
type Vendor struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Type      Kind      `db:"type" json:"type"`
	SortOrder int       `db:"sort_order" json:"sortOrder"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
