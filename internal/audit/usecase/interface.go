// Package usecase implements the append-only audit ledger and its signed
// export.
package usecase

import (
	"context"

	auditDomain "github.com/allisson/trustkit/internal/audit/domain"
)

// AuditLogUseCase is the host-facing contract of the audit log. Recording is
// best effort and never fails outward.
type AuditLogUseCase interface {
	// Record appends an event of the given type with optional metadata.
	// The timestamp is assigned at append time.
	Record(ctx context.Context, eventType string, metadata map[string]string)

	// RecordEvent appends a fully formed event, preserving its timestamp.
	// A zero timestamp is replaced with the current time.
	RecordEvent(ctx context.Context, event auditDomain.AuditEvent)

	// Events returns a snapshot of the ledger in append order.
	Events(ctx context.Context) []auditDomain.AuditEvent

	// Export returns a consistent snapshot of the ledger signed as a unit.
	Export(ctx context.Context) (auditDomain.SignedExport, error)

	// ExportJSON renders Export as indented JSON for sharing.
	ExportJSON(ctx context.Context) ([]byte, error)

	// PublicKeyPEM returns the export verification key.
	PublicKeyPEM() ([]byte, error)
}
