package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	apperrors "github.com/allisson/trustkit/internal/errors"
	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
)

// keyDeriver implements KeyDeriver using PBKDF2-HMAC-SHA256 for key stretching
// and HMAC-SHA256 for integrity tags.
//
// Keys are derived per user from (userID, salt) rather than using a single
// global MAC key, so compromise of one derived key does not expose the tag
// scheme for other users, and the salt makes offline dictionary attacks on
// low-entropy user identifiers more expensive. Derived keys are ephemeral:
// recomputed per operation and zeroed after use by callers.
type keyDeriver struct {
	iterations int
}

// NewKeyDeriver creates a KeyDeriver with the given PBKDF2 iteration count.
// Counts below 10000 are raised to 10000.
func NewKeyDeriver(iterations int) KeyDeriver {
	if iterations < 10000 {
		iterations = 10000
	}
	return &keyDeriver{iterations: iterations}
}

// DeriveKey stretches (userID, salt) into a 32-byte key using PBKDF2-HMAC-SHA256.
func (k *keyDeriver) DeriveKey(userID string, salt []byte) ([]byte, error) {
	if userID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "user id cannot be empty")
	}
	if len(salt) != storeDomain.SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d",
			storeDomain.ErrInvalidKeySize, storeDomain.SaltSize, len(salt))
	}

	return pbkdf2.Key([]byte(userID), salt, k.iterations, storeDomain.KeySize, sha256.New), nil
}

// ComputeTag computes the HMAC-SHA256 integrity tag of value under the derived key.
func (k *keyDeriver) ComputeTag(userID string, salt, value []byte) ([]byte, error) {
	derivedKey, err := k.DeriveKey(userID, salt)
	if err != nil {
		return nil, err
	}
	defer storeDomain.Zero(derivedKey)

	mac := hmac.New(sha256.New, derivedKey)
	mac.Write(value)
	return mac.Sum(nil), nil
}

// VerifyTag recomputes the tag over value and compares it in constant time.
func (k *keyDeriver) VerifyTag(userID string, salt, value, tag []byte) (bool, error) {
	expected, err := k.ComputeTag(userID, salt, value)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, tag), nil
}
