// Package auth — password hashing.
//
// bcrypt generates a random salt per hash and embeds it in the output, so
// two users with the same password get different hashes and no separate
// salt column is needed. CompareHashAndPassword is constant-time.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/maragia/motalk-server/internal/apperror"
)

// defaultCost is the bcrypt work factor for new password hashes.
const defaultCost = 10

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct rather than free functions so the cost can be injected in
// tests — cost 4 (the bcrypt minimum) keeps test runs fast without changing
// the logic under test.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom cost.
// Use bcrypt.MinCost in tests; never in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password with bcrypt. The output is a
// self-contained string (version, cost, salt, hash) that is stored directly
// in the database.
//
// bcrypt silently truncates inputs past 72 bytes; we reject them explicitly
// so callers aren't surprised.
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

// Verify checks a plaintext password against a stored bcrypt hash. A
// mismatch returns apperror.ErrInvalidCredentials; any other error means
// the stored hash itself is unusable.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperror.InvalidCredentials()
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
