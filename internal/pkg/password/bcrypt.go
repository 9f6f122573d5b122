// Package password hashes and verifies credentials with bcrypt. The salt is
// generated per hash and embedded in the result.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// placeholderHash is compared against when no stored hash exists so that a
// missing account costs the same as a wrong password.
var placeholderHash = mustHash("placeholder-password-never-matches", bcrypt.DefaultCost)

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password failed: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether plain matches hash. An empty hash is compared
// against a placeholder and never matches.
func (h *BcryptHasher) Compare(hash, plain string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(placeholderHash, []byte(plain))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func mustHash(plain string, cost int) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		panic(err)
	}
	return hash
}
