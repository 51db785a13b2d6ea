package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/prontuario/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(DefaultBcryptCost)
	require.NoError(t, err)
	return h
}

func TestNewPasswordHasher_CostRange(t *testing.T) {
	t.Parallel()

	_, err := NewPasswordHasher(bcrypt.MinCost)
	require.Error(t, err)

	_, err = NewPasswordHasher(bcrypt.MaxCost + 1)
	require.Error(t, err)

	h, err := NewPasswordHasher(11)
	require.NoError(t, err)
	assert.Equal(t, 11, h.Cost())
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	t.Parallel()
	h := newHasher(t)

	hash, err := h.Hash("senha-forte")
	require.NoError(t, err)

	assert.NotEqual(t, "senha-forte", hash)
	assert.True(t, h.Verify("senha-forte", hash))
	assert.False(t, h.Verify("senha-fraca", hash))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestPasswordHasher_SaltsDiffer(t *testing.T) {
	t.Parallel()
	h := newHasher(t)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same", a))
	assert.True(t, h.Verify("same", b))
}

func TestPasswordHasher_EmptySecret(t *testing.T) {
	t.Parallel()
	h := newHasher(t)

	hash, err := h.Hash("")
	require.NoError(t, err)
	assert.True(t, h.Verify("", hash))
	assert.False(t, h.Verify("x", hash))
}

func TestPasswordHasher_TooLong(t *testing.T) {
	t.Parallel()
	h := newHasher(t)

	_, err := h.Hash(strings.Repeat("a", 73))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorValidation))

	hash, err := h.Hash(strings.Repeat("a", 72))
	require.NoError(t, err)
	assert.True(t, h.Verify(strings.Repeat("a", 72), hash))
}

func TestPasswordHasher_VerifyMalformedHash(t *testing.T) {
	t.Parallel()
	h := newHasher(t)

	assert.False(t, h.Verify("anything", ""))
	assert.False(t, h.Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("anything", "$2a$10$short"))
}
