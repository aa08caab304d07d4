package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role enumerates portal roles. Authorization decisions depend entirely on
// the role carried by the identity provider; there are no per-resource ACLs.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a raw role string to a known Role. Unknown values are
// rejected so unrecognized principals are denied rather than treated as
// students.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// User is a portal account. Accounts are upserted on first authenticated
// request and never deleted.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName joins the name parts for presentation.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Principal is the authenticated actor attached to a request by the
// identity middleware.
type Principal struct {
	UserID string
	Role   Role
}
