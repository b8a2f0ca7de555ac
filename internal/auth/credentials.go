package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a user name and password do not match
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is the profile embedded in issued tokens
type User struct {
	UserID    int
	UserName  string
	FirstName string
	LastName  string
	City      string
}

// CredentialValidator checks a user name and password and returns the matching profile
type CredentialValidator interface {
	ValidateCredentials(ctx context.Context, userName, password string) (*User, error)
}

// AnyCredentials accepts every non-empty user name and password and returns a
// fixed demo profile. It stands in until a real user store exists.
type AnyCredentials struct{}

func (AnyCredentials) ValidateCredentials(ctx context.Context, userName, password string) (*User, error) {
	if strings.TrimSpace(userName) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	return &User{
		UserID:    1,
		UserName:  userName,
		FirstName: "Bob",
		LastName:  "Robertson",
		City:      "Reykjavik",
	}, nil
}

// StaticCredentials verifies passwords against a fixed set of bcrypt hashes
type StaticCredentials struct {
	users map[string]string
}

// NewStaticCredentials creates a validator for user name to bcrypt hash pairs
func NewStaticCredentials(users map[string]string) *StaticCredentials {
	return &StaticCredentials{users: users}
}

func (c *StaticCredentials) ValidateCredentials(ctx context.Context, userName, password string) (*User, error) {
	hash, ok := c.users[userName]
	if !ok || password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &User{UserID: userIndex(c.users, userName), UserName: userName}, nil
}

// userIndex gives each configured user a stable numeric id by sorted name order.
func userIndex(users map[string]string, userName string) int {
	id := 1
	for name := range users {
		if name < userName {
			id++
		}
	}
	return id
}

// NewCredentialValidator returns StaticCredentials when users are configured
// and AnyCredentials otherwise.
func NewCredentialValidator(users map[string]string) CredentialValidator {
	if len(users) > 0 {
		return NewStaticCredentials(users)
	}
	return AnyCredentials{}
}
