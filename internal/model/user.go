// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// PasswordHash carries the bcrypt digest and is tagged `json:"-"` so it can
// never leak into a response payload, no matter which handler serializes the
// struct. Username and email are unique across all users; the database's
// UNIQUE constraints are the authoritative enforcement (see the sqlite
// repository) — service-level pre-checks are best-effort only.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
