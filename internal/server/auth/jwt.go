// Package auth issues and verifies bearer tokens and hashes account secrets.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/prontuario/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the account id and CPF plus the standard
// iat/exp claims.
type Claims struct {
	UserID int64  `json:"id"`
	CPF    string `json:"cpf"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens with a server-held key.
type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// TokenManagerOption customizes a TokenManager.
type TokenManagerOption func(*TokenManager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) TokenManagerOption {
	return func(m *TokenManager) { m.now = now }
}

// NewTokenManager returns a manager issuing tokens valid for ttl.
func NewTokenManager(secretKey string, ttl time.Duration, opts ...TokenManagerOption) (*TokenManager, error) {
	if secretKey == "" {
		return nil, errors.New("token manager: empty secret key")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token manager: non-positive lifetime %s", ttl)
	}

	m := &TokenManager{secretKey: []byte(secretKey), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue signs claims, stamping iat with the current time and exp one
// lifetime later. Any registered claims already set on c are replaced.
func (m *TokenManager) Issue(c Claims) (string, error) {
	now := m.now()

	c.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(c.UserID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and then the expiry of tokenString.
//
// A forged, tampered or undecodable token yields common.ErrInvalidToken;
// an authentic token past its exp yields common.ErrTokenExpired.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return m.secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// TTL returns the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}
