package domain

import (
	"github.com/allisson/trustkit/internal/errors"
)

// Cryptographic and storage error definitions for the secure store.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a cryptographic key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates an authenticated decryption failed: wrong
	// key, tampered ciphertext or corrupted data. The cause is deliberately
	// not distinguished to avoid oracle behavior.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrKeeperUnavailable indicates the data-key keeper could not wrap or
	// unwrap the at-rest key.
	ErrKeeperUnavailable = errors.Wrap(errors.ErrStorageFailure, "keeper unavailable")
)
