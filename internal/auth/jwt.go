// Package auth issues and verifies bearer tokens and hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"product-manager/internal/clock"
	"product-manager/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid access token")

// Claims carries the authenticated manufacturer's identity.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager signs and parses HS256 access tokens.
type JWTManager struct {
	key      []byte
	issuer   string
	audience string
	lifetime time.Duration
	clock    clock.Clock
}

// NewJWTManager creates a new JWTManager.
func NewJWTManager(key, issuer, audience string, lifetime time.Duration, clk clock.Clock) *JWTManager {
	return &JWTManager{
		key:      []byte(key),
		issuer:   issuer,
		audience: audience,
		lifetime: lifetime,
		clock:    clk,
	}
}

// Issue signs a token for user and returns it with its expiry.
func (m *JWTManager) Issue(user model.User) (string, time.Time, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.lifetime)

	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Parse verifies signature, issuer, audience and expiry of raw.
func (m *JWTManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (any, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
