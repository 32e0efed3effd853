package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles. The numeric values match the stored column.
type Role int

const (
	RoleStudent  Role = 0
	RoleAdmin    Role = 1
	RoleCheckout Role = 2
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin || r == RoleCheckout
}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "STUDENT"
	case RoleAdmin:
		return "ADMIN"
	case RoleCheckout:
		return "CHECKOUT"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole accepts either the role name or its numeric value.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STUDENT", "0":
		return RoleStudent, nil
	case "ADMIN", "1":
		return RoleAdmin, nil
	case "CHECKOUT", "2":
		return RoleCheckout, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// User is a registered account. ID is the student card id the account is bound to.
type User struct {
	InternalID   int64
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity returns the session-relevant attributes of the user.
func (u *User) Identity() Identity {
	return Identity{SubjectID: u.ID, Role: u.Role}
}
