package services

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoAPIKey is returned when neither a plaintext key nor a hash is configured.
var ErrNoAPIKey = errors.New("an API key or an API key bcrypt hash must be configured")

// APIKeyService checks request credentials against the configured secret.
type APIKeyService struct {
	secret []byte
	hash   []byte
}

// NewAPIKeyService creates a new APIKeyService. When bcryptHash is set it takes
// precedence and the plaintext secret is ignored.
func NewAPIKeyService(secret, bcryptHash string) (*APIKeyService, error) {
	if bcryptHash != "" {
		if _, err := bcrypt.Cost([]byte(bcryptHash)); err != nil {
			return nil, fmt.Errorf("invalid API key bcrypt hash: %w", err)
		}
		return &APIKeyService{hash: []byte(bcryptHash)}, nil
	}
	if secret == "" {
		return nil, ErrNoAPIKey
	}
	return &APIKeyService{secret: []byte(secret)}, nil
}

// Verify reports whether key matches the configured secret.
func (s *APIKeyService) Verify(key string) bool {
	if s.hash != nil {
		return bcrypt.CompareHashAndPassword(s.hash, []byte(key)) == nil
	}
	return subtle.ConstantTimeCompare(s.secret, []byte(key)) == 1
}
