package auth

import (
	"fmt"

	"github.com/dmitrijs2005/prontuario/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when the configuration does not set a cost.
const DefaultBcryptCost = 10

// maxSecretLen is the number of bytes bcrypt actually hashes.
const maxSecretLen = 72

// PasswordHasher hashes and verifies account secrets with bcrypt.
// Each hash carries its own random salt and the cost it was made with.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using the given bcrypt cost.
// Costs below DefaultBcryptCost or above bcrypt.MaxCost are rejected.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < DefaultBcryptCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, DefaultBcryptCost, bcrypt.MaxCost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// Hash returns the bcrypt encoding of secret.
//
// Secrets longer than 72 bytes are refused with common.ErrorValidation
// rather than silently truncated.
func (h *PasswordHasher) Hash(secret string) (string, error) {
	if len(secret) > maxSecretLen {
		return "", fmt.Errorf("%w: secret longer than %d bytes", common.ErrorValidation, maxSecretLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: hash secret: %v", common.ErrorInternal, err)
	}
	return string(hash), nil
}

// Verify reports whether secret matches hash. A malformed hash simply does
// not match.
func (h *PasswordHasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// Cost returns the work factor new hashes are made with.
func (h *PasswordHasher) Cost() int {
	return h.cost
}
