package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
)

func newKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, storeDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestAEADManager_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	key := newKey(t)

	t.Run("aes-gcm", func(t *testing.T) {
		cipher, err := manager.CreateCipher(key, storeDomain.AESGCM)
		require.NoError(t, err)
		assert.IsType(t, &AESGCMCipher{}, cipher)
	})

	t.Run("chacha20-poly1305", func(t *testing.T) {
		cipher, err := manager.CreateCipher(key, storeDomain.ChaCha20)
		require.NoError(t, err)
		assert.IsType(t, &ChaCha20Poly1305Cipher{}, cipher)
	})

	t.Run("invalid key size", func(t *testing.T) {
		_, err := manager.CreateCipher([]byte("short"), storeDomain.AESGCM)
		assert.ErrorIs(t, err, storeDomain.ErrInvalidKeySize)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(key, storeDomain.Algorithm("rot13"))
		assert.ErrorIs(t, err, storeDomain.ErrUnsupportedAlgorithm)
	})
}

func TestAEAD_RoundTrip(t *testing.T) {
	manager := NewAEADManager()
	key := newKey(t)
	plaintext := []byte("record payload")
	aad := []byte("record-key")

	for _, alg := range []storeDomain.Algorithm{storeDomain.AESGCM, storeDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			cipher, err := manager.CreateCipher(key, alg)
			require.NoError(t, err)

			ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
			require.NoError(t, err)
			assert.NotEqual(t, plaintext, ciphertext)

			decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, decrypted)

			// Tampered ciphertext must fail authentication
			ciphertext[0] ^= 0xff
			_, err = cipher.Decrypt(ciphertext, nonce, aad)
			assert.Error(t, err)
			ciphertext[0] ^= 0xff

			// Wrong AAD must fail authentication
			_, err = cipher.Decrypt(ciphertext, nonce, []byte("other-key"))
			assert.Error(t, err)
		})
	}
}
