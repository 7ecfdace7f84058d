// Package service provides session token generation and environment
// attestation for the zero-trust layer.
package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/trustkit/internal/errors"
)

// TokenService generates session tokens and verifies them against their
// at-rest hashes.
type TokenService interface {
	// GenerateToken returns a fresh 256-bit random token and its Argon2id
	// hash. Only the hash is ever persisted.
	GenerateToken() (plainToken string, hashedToken string, err error)

	// CompareToken performs a constant-time comparison between a presented
	// token and its stored hash.
	CompareToken(plainToken string, hashedToken string) bool
}

// tokenService implements TokenService using Argon2id for token hashing.
type tokenService struct {
	hasher *pwdhash.PasswordHasher
}

// NewTokenService creates a TokenService using the interactive Argon2id
// policy, sized for per-request verification.
func NewTokenService() (TokenService, error) {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyInteractive),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create token hasher")
	}
	return &tokenService{hasher: hasher}, nil
}

func (s *tokenService) GenerateToken() (string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate session token")
	}

	plainToken := base64.URLEncoding.EncodeToString(randomBytes)

	hashedToken, err := s.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to hash session token")
	}

	return plainToken, hashedToken, nil
}

func (s *tokenService) CompareToken(plainToken string, hashedToken string) bool {
	ok, err := s.hasher.Verify([]byte(plainToken), hashedToken)
	if err != nil {
		return false
	}
	return ok
}
