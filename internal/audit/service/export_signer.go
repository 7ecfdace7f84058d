// Package service implements export signing for the audit log.
package service

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"

	auditDomain "github.com/allisson/trustkit/internal/audit/domain"
	"github.com/allisson/trustkit/internal/errors"
)

const rsaKeyBits = 2048

// ExportSigner signs audit ledger snapshots and verifies signed exports.
type ExportSigner interface {
	// Sign produces a SignedExport whose signature covers the canonical
	// encoding of events.
	Sign(events []auditDomain.AuditEvent) (auditDomain.SignedExport, error)

	// Verify reports whether the export's signature matches its events.
	Verify(export auditDomain.SignedExport) (bool, error)

	// PublicKeyPEM returns the verification key in PKIX PEM form.
	PublicKeyPEM() ([]byte, error)
}

type rsaExportSigner struct {
	privateKey *rsa.PrivateKey
}

// NewRSAExportSigner returns an ExportSigner backed by the given RSA key.
func NewRSAExportSigner(privateKey *rsa.PrivateKey) (ExportSigner, error) {
	if privateKey == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "private key is required")
	}
	if privateKey.N.BitLen() < rsaKeyBits {
		return nil, errors.Wrap(errors.ErrInvalidInput, "RSA key must be at least 2048 bits")
	}
	return &rsaExportSigner{privateKey: privateKey}, nil
}

// GenerateExportSigner returns an ExportSigner with a freshly generated
// RSA-2048 key. The key lives only as long as the signer.
func GenerateExportSigner() (ExportSigner, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, errors.Wrap(errors.ErrSigningFailure, "failed to generate signing key")
	}
	return &rsaExportSigner{privateKey: privateKey}, nil
}

func (s *rsaExportSigner) Sign(events []auditDomain.AuditEvent) (auditDomain.SignedExport, error) {
	if events == nil {
		events = []auditDomain.AuditEvent{}
	}
	digest, err := canonicalDigest(events)
	if err != nil {
		return auditDomain.SignedExport{}, err
	}
	signature, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, crypto.SHA256, digest)
	if err != nil {
		return auditDomain.SignedExport{}, errors.Wrap(errors.ErrSigningFailure, "failed to sign export")
	}
	return auditDomain.SignedExport{
		Events:    events,
		Signature: base64.StdEncoding.EncodeToString(signature),
	}, nil
}

func (s *rsaExportSigner) Verify(export auditDomain.SignedExport) (bool, error) {
	digest, err := canonicalDigest(export.Events)
	if err != nil {
		return false, err
	}
	signature, err := base64.StdEncoding.DecodeString(export.Signature)
	if err != nil {
		return false, nil
	}
	if err := rsa.VerifyPKCS1v15(&s.privateKey.PublicKey, crypto.SHA256, digest, signature); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *rsaExportSigner) PublicKeyPEM() ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(&s.privateKey.PublicKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrSigningFailure, "failed to marshal public key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// VerifyExportWithPublicKey checks a signed export against a PEM encoded
// verification key, for holders who never see the private key.
func VerifyExportWithPublicKey(export auditDomain.SignedExport, publicKeyPEM []byte) (bool, error) {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return false, errors.Wrap(errors.ErrInvalidInput, "invalid public key PEM")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return false, errors.Wrap(errors.ErrInvalidInput, "failed to parse public key")
	}
	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return false, errors.Wrap(errors.ErrInvalidInput, "public key is not RSA")
	}
	digest, err := canonicalDigest(export.Events)
	if err != nil {
		return false, err
	}
	signature, err := base64.StdEncoding.DecodeString(export.Signature)
	if err != nil {
		return false, nil
	}
	if err := rsa.VerifyPKCS1v15(rsaKey, crypto.SHA256, digest, signature); err != nil {
		return false, nil
	}
	return true, nil
}

// canonicalDigest hashes the compact JSON encoding of events. Struct field
// order is fixed and map keys are emitted sorted, so the encoding is
// deterministic.
func canonicalDigest(events []auditDomain.AuditEvent) ([]byte, error) {
	if events == nil {
		events = []auditDomain.AuditEvent{}
	}
	canonical, err := json.Marshal(events)
	if err != nil {
		return nil, errors.Wrap(errors.ErrSigningFailure, "failed to encode events")
	}
	digest := sha256.Sum256(canonical)
	return digest[:], nil
}
