package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	auditService "github.com/allisson/trustkit/internal/audit/service"
	auditUseCase "github.com/allisson/trustkit/internal/audit/usecase"
)

func writeExportFixture(t *testing.T) (exportPath, publicKeyPath string) {
	t.Helper()
	ctx := context.Background()

	signer, err := auditService.GenerateExportSigner()
	require.NoError(t, err)

	auditLog := auditUseCase.NewAuditLogUseCase(signer, 1000)
	auditLog.Record(ctx, "SECURITY_EVENT", map[string]string{"event": "session_started"})
	auditLog.Record(ctx, "DATA_ACCESS", map[string]string{"key": "pin"})

	exportJSON, err := auditLog.ExportJSON(ctx)
	require.NoError(t, err)

	publicKeyPEM, err := auditLog.PublicKeyPEM()
	require.NoError(t, err)

	dir := t.TempDir()
	exportPath = filepath.Join(dir, "export.json")
	publicKeyPath = filepath.Join(dir, "public_key.pem")
	require.NoError(t, os.WriteFile(exportPath, exportJSON, 0o600))
	require.NoError(t, os.WriteFile(publicKeyPath, publicKeyPEM, 0o600))
	return exportPath, publicKeyPath
}

func TestRunVerifyExport(t *testing.T) {
	t.Run("valid-export-passes", func(t *testing.T) {
		exportPath, publicKeyPath := writeExportFixture(t)

		var out bytes.Buffer
		err := RunVerifyExport(testLogger(), &out, exportPath, publicKeyPath)
		require.NoError(t, err)
		require.Contains(t, out.String(), "PASSED")
	})

	t.Run("tampered-export-fails", func(t *testing.T) {
		exportPath, publicKeyPath := writeExportFixture(t)

		raw, err := os.ReadFile(exportPath)
		require.NoError(t, err)
		tampered := bytes.Replace(raw, []byte("session_started"), []byte("session_replayed"), 1)
		require.NoError(t, os.WriteFile(exportPath, tampered, 0o600))

		var out bytes.Buffer
		err = RunVerifyExport(testLogger(), &out, exportPath, publicKeyPath)
		require.Error(t, err)
		require.Contains(t, out.String(), "FAILED")
	})

	t.Run("missing-export-file", func(t *testing.T) {
		_, publicKeyPath := writeExportFixture(t)

		var out bytes.Buffer
		err := RunVerifyExport(testLogger(), &out, filepath.Join(t.TempDir(), "missing.json"), publicKeyPath)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read export file")
	})

	t.Run("malformed-export-file", func(t *testing.T) {
		exportPath, publicKeyPath := writeExportFixture(t)
		require.NoError(t, os.WriteFile(exportPath, []byte("not json"), 0o600))

		var out bytes.Buffer
		err := RunVerifyExport(testLogger(), &out, exportPath, publicKeyPath)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse export file")
	})
}
