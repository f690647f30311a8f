package access

import (
	"errors"
	"fmt"
)

// Role is the closed set of principal roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ErrUnknownRole is returned when a role value outside the closed set is
// decoded from a trusted source (database row, session token).
var ErrUnknownRole = errors.New("unknown role")

// ParseRole decodes a stored role value. Matching is exact: "admin" and
// " ADMIN" are both rejected.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r Role) String() string { return string(r) }

// UnmarshalText rejects unknown roles when decoding JSON.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
