package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/estate/listings/internal/infrastructure/config"
)

const bcryptCost = 12

// ErrInvalidCredentials is returned for any username/password mismatch
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrLoginDisabled means no admin password hash is configured
var ErrLoginDisabled = errors.New("admin login is not configured")

// HashPassword returns the bcrypt hash stored in admin.password_hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticator checks the single configured admin account and issues tokens
type Authenticator struct {
	username     string
	passwordHash []byte
	tokens       *JWTService
}

// NewAuthenticator creates an Authenticator for cfg
func NewAuthenticator(cfg config.AdminConfig, tokens *JWTService) *Authenticator {
	return &Authenticator{
		username:     cfg.Username,
		passwordHash: []byte(cfg.PasswordHash),
		tokens:       tokens,
	}
}

// Login verifies the credentials and issues a token. The bcrypt comparison
// runs even when the username is wrong so both failures take as long.
func (a *Authenticator) Login(username, password string) (*Token, error) {
	if len(a.passwordHash) == 0 {
		return nil, ErrLoginDisabled
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}

	return a.tokens.GenerateToken(a.username)
}
