package service

import (
	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
)

// AEADManagerService implements the AEADManager interface for creating AEAD cipher instances.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher creates an AEAD cipher instance for the specified algorithm.
// Returns ErrInvalidKeySize if key is not 32 bytes or ErrUnsupportedAlgorithm if algorithm is unknown.
func (am *AEADManagerService) CreateCipher(key []byte, alg storeDomain.Algorithm) (AEAD, error) {
	// Validate key size
	if len(key) != storeDomain.KeySize {
		return nil, storeDomain.ErrInvalidKeySize
	}

	// Create cipher based on algorithm
	switch alg {
	case storeDomain.AESGCM:
		return NewAESGCM(key)
	case storeDomain.ChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, storeDomain.ErrUnsupportedAlgorithm
	}
}
