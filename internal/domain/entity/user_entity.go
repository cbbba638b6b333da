package entity

import (
	"time"
)

// Provider identifies how an account authenticates. Fixed at creation;
// there is no update path for it.
type Provider string

const (
	ProviderEmail    Provider = "email"
	ProviderLinkedIn Provider = "linkedin"
)

// User is the aggregate root for the identity domain.
// PasswordHash is a bcrypt hash, present only for email-provider users;
// ProviderID is the third party's subject identifier, present only for
// OAuth-provider users.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Avatar       string
	Provider     Provider
	ProviderID   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy safe to hand to clients: the password hash is
// stripped, everything else is kept.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
