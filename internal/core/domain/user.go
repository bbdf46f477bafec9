package domain

import (
	"strings"
	"time"
)

// User models a registered account. The password hash never leaves the
// server: it is excluded from every JSON rendering.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// NormalizeEmail is the canonical form used for storage and lookups, so that
// uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
