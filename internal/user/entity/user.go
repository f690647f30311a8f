package entity

import "time"

// User represents a household member row in the `users` table.
type User struct {
	ID          string     `db:"id"`
	Name        *string    `db:"name"`
	Email       string     `db:"email"`
	Role        string     `db:"role"`
	LastLoginAt *time.Time `db:"last_login_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Member is the projection served to the target selector.
type Member struct {
	ID    string  `db:"id" json:"id"`
	Name  *string `db:"name" json:"name"`
	Email string  `db:"email" json:"email"`
}
