package security

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cercino/vointer/internal/domain"
)

const DefaultBcryptCost = 10

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash trims leading/trailing whitespace before hashing, matching how the
// registration form treats the field.
func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), h.cost)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}
	return string(b), nil
}

// Verify reports whether password matches hash. A missing stored hash
// (OAuth-only account) is simply false, never an error.
func (h *BcryptHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(password))) == nil
}
