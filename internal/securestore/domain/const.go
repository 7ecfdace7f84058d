package domain

// Algorithm represents the cryptographic algorithm used for encryption at rest.
//
// All supported algorithms provide Authenticated Encryption with Associated Data
// (AEAD), ensuring both confidentiality and authenticity of encrypted records.
//
// Algorithm selection guidelines:
//   - Use AESGCM on CPUs with AES-NI hardware acceleration
//   - Use ChaCha20 on mobile devices or systems without AES-NI
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// KeySize is the size in bytes of all symmetric keys (data keys and
	// derived per-user keys).
	KeySize = 32

	// SaltSize is the size in bytes of a per-user salt, created lazily on the
	// first derivation request for that user.
	SaltSize = 16

	// TagSize is the size in bytes of an HMAC-SHA256 integrity tag.
	TagSize = 32
)
