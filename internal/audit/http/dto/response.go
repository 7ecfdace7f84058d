// Package dto provides data transfer objects for HTTP response handling.
package dto

import (
	auditDomain "github.com/allisson/trustkit/internal/audit/domain"
)

// ListEventsResponse returns a page of audit events.
type ListEventsResponse struct {
	Events []auditDomain.AuditEvent `json:"events"`
	Offset int                      `json:"offset"`
	Limit  int                      `json:"limit"`
	Total  int                      `json:"total"`
}

// PublicKeyResponse returns the export verification key in PEM form.
type PublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}
