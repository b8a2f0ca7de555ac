package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alexivanou/cityinfo-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenLifetime applies when the configuration leaves it unset
const DefaultTokenLifetime = time.Hour

// ErrInvalidToken is returned for any token that fails parsing or validation
var ErrInvalidToken = errors.New("invalid token")

// Claims are the CityInfo-specific token claims
type Claims struct {
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	City       string `json:"city,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HMAC-SHA256 signed tokens
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   string
	lifetime   time.Duration
	timeFunc   func() time.Time
}

const ephemeralKeySize = 32

// NewTokenService creates a token service from auth configuration
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("auth secret is not configured")
	}
	return newTokenService([]byte(cfg.Secret), cfg), nil
}

// NewEphemeralTokenService signs with a random key that lives as long as the
// process. Tokens it issues stop validating after a restart.
func NewEphemeralTokenService(cfg config.AuthConfig) (*TokenService, error) {
	key := make([]byte, ephemeralKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return newTokenService(key, cfg), nil
}

func newTokenService(key []byte, cfg config.AuthConfig) *TokenService {
	lifetime := cfg.TokenLifetime
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenService{
		signingKey: key,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		lifetime:   lifetime,
		timeFunc:   time.Now,
	}
}

// Issue creates a signed token for the user
func (s *TokenService) Issue(user User) (string, error) {
	now := s.timeFunc()
	claims := Claims{
		GivenName:  user.FirstName,
		FamilyName: user.LastName,
		City:       user.City,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.UserID),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and checks signature, issuer, audience and expiry
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
