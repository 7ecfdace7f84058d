package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	auditDomain "github.com/allisson/trustkit/internal/audit/domain"
	auditService "github.com/allisson/trustkit/internal/audit/service"
)

// RunVerifyExport checks the RSA signature of an exported audit log against
// the signer's public key. Returns an error when the signature does not match,
// so the exit code reflects the verification result.
func RunVerifyExport(logger *slog.Logger, writer io.Writer, exportPath, publicKeyPath string) error {
	exportBytes, err := os.ReadFile(exportPath)
	if err != nil {
		return fmt.Errorf("failed to read export file: %w", err)
	}

	publicKeyPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}

	var export auditDomain.SignedExport
	if err := json.Unmarshal(exportBytes, &export); err != nil {
		return fmt.Errorf("failed to parse export file: %w", err)
	}

	logger.Info("verifying audit export",
		slog.String("export", exportPath),
		slog.Int("events", len(export.Events)),
	)

	valid, err := auditService.VerifyExportWithPublicKey(export, publicKeyPEM)
	if err != nil {
		return fmt.Errorf("failed to verify export: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Audit Export Verification\n")
	_, _ = fmt.Fprintf(writer, "=========================\n\n")
	_, _ = fmt.Fprintf(writer, "Events:    %d\n", len(export.Events))

	if !valid {
		_, _ = fmt.Fprintf(writer, "Status:    FAILED\n")
		return fmt.Errorf("signature verification failed")
	}

	_, _ = fmt.Fprintf(writer, "Status:    PASSED\n")
	return nil
}
