package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordHashCost is the weakest bcrypt cost this service will accept.
const MinPasswordHashCost = 12

// PasswordHasher hashes and verifies password credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt. Comparison is left
// entirely to bcrypt, which is constant-time.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost, raised to
// MinPasswordHashCost and capped at bcrypt's maximum.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < MinPasswordHashCost {
		cost = MinPasswordHashCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of the plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the stored hash.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
