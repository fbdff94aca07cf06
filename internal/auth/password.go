// Package auth provides password hashing and session tokens.
//
// Passwords are stored as bcrypt hashes. Data files written by the legacy
// app hold raw passwords instead; IsBcryptHash lets the account service tell
// the two shapes apart so it can verify a legacy credential in constant time
// and rehash it on the spot.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor, roughly 250ms per hash on current
// server hardware.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification. The cost is a
// field so tests can inject the bcrypt minimum and stay fast.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom cost.
// Use bcrypt.MinCost (4) in tests; never in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt. The output embeds
// the salt and cost, so it is stored as-is.
//
// Returns an error for plaintexts over 72 bytes — bcrypt silently truncates
// beyond that, which we refuse rather than hide.
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

// Verify checks a plaintext password against a stored bcrypt hash.
// bcrypt's comparison is constant-time internally.
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

// IsBcryptHash reports whether a stored credential looks like a bcrypt hash.
// Anything else is a raw password from a legacy data file.
func IsBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// VerifyLegacy compares a legacy plaintext credential in constant time.
// Callers that get true back must rehash immediately so the raw value
// disappears from the store on the next write.
func VerifyLegacy(stored, plaintext string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plaintext)) == 1
}
