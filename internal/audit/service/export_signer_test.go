package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/trustkit/internal/audit/domain"
)

func sampleEvents() []auditDomain.AuditEvent {
	return []auditDomain.AuditEvent{
		{Timestamp: 1700000000000, Type: auditDomain.EventTypeSecurityEvent, Metadata: map[string]string{"source": "attestation"}},
		{Timestamp: 1700000001000, Type: auditDomain.EventTypeDataAccess, Metadata: map[string]string{"key": "pin"}},
	}
}

func TestExportSigner(t *testing.T) {
	signer, err := GenerateExportSigner()
	require.NoError(t, err)

	t.Run("sign and verify round trip", func(t *testing.T) {
		export, err := signer.Sign(sampleEvents())
		require.NoError(t, err)
		require.NotEmpty(t, export.Signature)

		ok, err := signer.Verify(export)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("empty ledger signs", func(t *testing.T) {
		export, err := signer.Sign(nil)
		require.NoError(t, err)
		require.NotEmpty(t, export.Signature)

		ok, err := signer.Verify(export)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("tampered event fails verification", func(t *testing.T) {
		export, err := signer.Sign(sampleEvents())
		require.NoError(t, err)

		export.Events[0].Metadata["key"] = "tampered"

		ok, err := signer.Verify(export)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("removed event fails verification", func(t *testing.T) {
		export, err := signer.Sign(sampleEvents())
		require.NoError(t, err)

		export.Events = export.Events[:1]

		ok, err := signer.Verify(export)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed signature fails verification", func(t *testing.T) {
		export, err := signer.Sign(sampleEvents())
		require.NoError(t, err)

		export.Signature = "not base64!"

		ok, err := signer.Verify(export)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("verification with PEM public key", func(t *testing.T) {
		export, err := signer.Sign(sampleEvents())
		require.NoError(t, err)

		publicKey, err := signer.PublicKeyPEM()
		require.NoError(t, err)

		ok, err := VerifyExportWithPublicKey(export, publicKey)
		require.NoError(t, err)
		assert.True(t, ok)

		export.Events[0].Type = "FORGED"
		ok, err = VerifyExportWithPublicKey(export, publicKey)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("foreign key fails verification", func(t *testing.T) {
		export, err := signer.Sign(sampleEvents())
		require.NoError(t, err)

		other, err := GenerateExportSigner()
		require.NoError(t, err)

		ok, err := other.Verify(export)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
