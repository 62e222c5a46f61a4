// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/userauth/internal/common"
)

// MaxLength is the longest plaintext bcrypt can hash without truncation.
const MaxLength = 72

// Verifier hashes plaintext passwords and compares them against stored hashes.
type Verifier struct {
	cost int
}

// NewVerifier returns a Verifier using the given bcrypt cost.
func NewVerifier(cost int) (*Verifier, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("password: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Verifier{cost: cost}, nil
}

// Hash returns a salted bcrypt hash of plaintext. Every call uses a fresh salt.
func (v *Verifier) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxLength {
		return "", fmt.Errorf("%w: password longer than %d bytes", common.ErrValidation, MaxLength)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), v.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Verify reports whether plaintext matches hash. A malformed hash is a
// mismatch.
func (v *Verifier) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
