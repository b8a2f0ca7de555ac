package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alexivanou/cityinfo-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:        testSecret,
		Issuer:        "cityinfo-api",
		Audience:      "cityinfo-api",
		TokenLifetime: time.Hour,
	}
}

func TestAnyCredentials(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		password string
		wantErr  bool
	}{
		{name: "accepted", userName: "bob", password: "secret"},
		{name: "empty user name", userName: " ", password: "secret", wantErr: true},
		{name: "empty password", userName: "bob", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := AnyCredentials{}.ValidateCredentials(context.Background(), tt.userName, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &User{UserID: 1, UserName: "bob", FirstName: "Bob", LastName: "Robertson", City: "Reykjavik"}, user)
		})
	}
}

func TestStaticCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	validator := NewCredentialValidator(map[string]string{"alice": "unused", "bob": string(hash)})
	require.IsType(t, &StaticCredentials{}, validator)

	user, err := validator.ValidateCredentials(context.Background(), "bob", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.UserName)
	assert.Equal(t, 2, user.UserID)

	_, err = validator.ValidateCredentials(context.Background(), "bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = validator.ValidateCredentials(context.Background(), "mallory", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewCredentialValidator_DefaultsToAny(t *testing.T) {
	assert.IsType(t, AnyCredentials{}, NewCredentialValidator(nil))
}

func TestTokenService(t *testing.T) {
	t.Run("requires a secret", func(t *testing.T) {
		_, err := NewTokenService(config.AuthConfig{})
		assert.Error(t, err)
	})

	t.Run("issue and validate", func(t *testing.T) {
		svc, err := NewTokenService(testAuthConfig())
		require.NoError(t, err)

		token, err := svc.Issue(User{UserID: 1, FirstName: "Bob", LastName: "Robertson", City: "Reykjavik"})
		require.NoError(t, err)

		claims, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "1", claims.Subject)
		assert.Equal(t, "Bob", claims.GivenName)
		assert.Equal(t, "Robertson", claims.FamilyName)
		assert.Equal(t, "Reykjavik", claims.City)
		assert.Equal(t, "cityinfo-api", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("expired token", func(t *testing.T) {
		svc, err := NewTokenService(testAuthConfig())
		require.NoError(t, err)
		svc.timeFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := svc.Issue(User{UserID: 1})
		require.NoError(t, err)

		svc.timeFunc = time.Now
		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		issuer, err := NewTokenService(testAuthConfig())
		require.NoError(t, err)
		token, err := issuer.Issue(User{UserID: 1})
		require.NoError(t, err)

		cfg := testAuthConfig()
		cfg.Secret = "fedcba9876543210fedcba9876543210"
		other, err := NewTokenService(cfg)
		require.NoError(t, err)
		_, err = other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		issuer, err := NewTokenService(testAuthConfig())
		require.NoError(t, err)
		token, err := issuer.Issue(User{UserID: 1})
		require.NoError(t, err)

		cfg := testAuthConfig()
		cfg.Audience = "another-api"
		other, err := NewTokenService(cfg)
		require.NoError(t, err)
		_, err = other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		svc, err := NewTokenService(testAuthConfig())
		require.NoError(t, err)
		_, err = svc.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestEphemeralTokenService(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Secret = ""
	cfg.TokenLifetime = 0

	svc, err := NewEphemeralTokenService(cfg)
	require.NoError(t, err)

	token, err := svc.Issue(User{UserID: 1, City: "Reykjavik"})
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "Reykjavik", claims.City)
	assert.Equal(t, DefaultTokenLifetime, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	// Each process gets its own key
	other, err := NewEphemeralTokenService(cfg)
	require.NoError(t, err)
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
