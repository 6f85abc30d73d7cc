package domain

import (
	"strings"
	"time"
)

// User is a marketplace account. Role is read at login and copied into the
// session token; later changes apply from the next login.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail is the canonical form under which accounts are stored,
// looked up and throttled.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
