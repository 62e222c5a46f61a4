// Package models holds the domain types persisted by the server.
package models

import (
	"slices"
	"time"
)

// User is a registered account. PasswordHash is a bcrypt hash, never the
// plaintext. Roles keep their insertion order.
type User struct {
	ID           int64
	UserName     string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}
