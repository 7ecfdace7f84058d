package service

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Attestor checks the runtime environment against a pinned reference.
type Attestor interface {
	// Attest reports whether the environment digest matches the pin. Fails
	// closed: missing anchor or pin is untrusted.
	Attest() bool

	// Digest returns the base64 SHA-256 digest of the trust anchor.
	Digest() string
}

type digestAttestor struct {
	anchor string
	pin    string
}

// NewDigestAttestor returns an Attestor that hashes anchor with SHA-256 and
// compares the base64 digest against pin as a prefix. The pin's length sets
// how much of the digest must match.
func NewDigestAttestor(anchor, pin string) Attestor {
	return &digestAttestor{anchor: anchor, pin: pin}
}

func (a *digestAttestor) Digest() string {
	digest := sha256.Sum256([]byte(a.anchor))
	return base64.StdEncoding.EncodeToString(digest[:])
}

func (a *digestAttestor) Attest() bool {
	if a.anchor == "" || a.pin == "" {
		return false
	}
	return strings.HasPrefix(a.Digest(), a.pin)
}
