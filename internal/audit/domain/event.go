// Package domain defines the audit log entities.
package domain

// Common audit event types. Type is free-form; these cover the events the
// substrate itself emits.
const (
	EventTypeDataAccess     = "DATA_ACCESS"
	EventTypeSecurityEvent  = "SECURITY_EVENT"
	EventTypeSessionEvent   = "SESSION_EVENT"
	EventTypeThreatDetected = "THREAT_DETECTED"
	EventTypeKeyRotation    = "KEY_ROTATION"
)

// AuditEvent is a single append-only audit record. Timestamp is epoch
// milliseconds at append time.
type AuditEvent struct {
	Timestamp int64             `json:"timestamp"`
	Type      string            `json:"type"`
	Metadata  map[string]string `json:"metadata"`
}

// SignedExport is a snapshot of the audit ledger together with a detached
// signature over its canonical encoding.
type SignedExport struct {
	Events    []AuditEvent `json:"events"`
	Signature string       `json:"signature"`
}
