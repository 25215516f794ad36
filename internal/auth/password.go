// Package auth provides password hashing, JWT issuance/verification, and the
// session middleware that turns a bearer token into an authenticated user.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor. Cost 12 takes roughly ~250ms on a
// modern server — negligible for a login, brutal for an attacker.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the cost can be injected in tests —
// cost 4 (the bcrypt minimum) makes tests run in milliseconds.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Use cost 4 in tests; never below 12 in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt. Each call uses a
// fresh random salt, so two hashes of the same password differ. The returned
// string embeds the salt and cost — store it directly.
//
// Returns an error if the plaintext exceeds 72 bytes (bcrypt would silently
// truncate it otherwise).
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
// Returns nil on a match. Any mismatch, malformed digest, or unknown hash
// version yields a non-nil error — it never panics.
//
// bcrypt.CompareHashAndPassword compares in constant time, so response
// timing does not reveal how close a guess was.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
