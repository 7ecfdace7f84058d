// Package service provides the cryptographic services of the secure store:
// AEAD ciphers for encryption at rest, PBKDF2 per-user key derivation with
// HMAC-SHA256 integrity tags, and the keeper that wraps the at-rest data key.
package service

import (
	"context"

	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg storeDomain.Algorithm) (AEAD, error)
}

// KeyDeriver derives per-user integrity keys and computes integrity tags.
type KeyDeriver interface {
	// DeriveKey stretches (userID, salt) into a 32-byte key. Deterministic:
	// the same inputs always reproduce the same key.
	DeriveKey(userID string, salt []byte) ([]byte, error)

	// ComputeTag computes the HMAC-SHA256 integrity tag of value under the
	// key derived from (userID, salt).
	ComputeTag(userID string, salt, value []byte) ([]byte, error)

	// VerifyTag recomputes the tag over value and compares it against tag in
	// constant time.
	VerifyTag(userID string, salt, value, tag []byte) (bool, error)
}

// DataKeyKeeper wraps and unwraps the at-rest data key through an external
// keeper (local base64 key, vault, or cloud KMS).
type DataKeyKeeper interface {
	// Wrap encrypts a plaintext data key for persistence.
	Wrap(ctx context.Context, dataKey []byte) ([]byte, error)

	// Unwrap decrypts a previously wrapped data key.
	Unwrap(ctx context.Context, wrapped []byte) ([]byte, error)

	// Close releases keeper resources.
	Close() error
}
