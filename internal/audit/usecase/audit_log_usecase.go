package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	auditDomain "github.com/allisson/trustkit/internal/audit/domain"
	"github.com/allisson/trustkit/internal/audit/service"
	"github.com/allisson/trustkit/internal/errors"
)

type auditLogUseCase struct {
	signer    service.ExportSigner
	maxEvents int
	mu        sync.Mutex
	events    []auditDomain.AuditEvent
}

// NewAuditLogUseCase returns an in-memory append-only audit ledger. When the
// ledger exceeds maxEvents the oldest entries are dropped.
func NewAuditLogUseCase(signer service.ExportSigner, maxEvents int) AuditLogUseCase {
	if maxEvents <= 0 {
		maxEvents = 10000
	}
	return &auditLogUseCase{
		signer:    signer,
		maxEvents: maxEvents,
	}
}

func (u *auditLogUseCase) Record(ctx context.Context, eventType string, metadata map[string]string) {
	u.RecordEvent(ctx, auditDomain.AuditEvent{
		Type:     eventType,
		Metadata: metadata,
	})
}

func (u *auditLogUseCase) RecordEvent(_ context.Context, event auditDomain.AuditEvent) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.Metadata == nil {
		event.Metadata = map[string]string{}
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.events = append(u.events, event)
	if len(u.events) > u.maxEvents {
		dropped := len(u.events) - u.maxEvents
		u.events = append(u.events[:0:0], u.events[dropped:]...)
		slog.Warn("audit ledger truncated", "dropped", dropped, "max_events", u.maxEvents)
	}
}

func (u *auditLogUseCase) Events(_ context.Context) []auditDomain.AuditEvent {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]auditDomain.AuditEvent(nil), u.events...)
}

func (u *auditLogUseCase) Export(ctx context.Context) (auditDomain.SignedExport, error) {
	events := u.Events(ctx)
	export, err := u.signer.Sign(events)
	if err != nil {
		return auditDomain.SignedExport{}, errors.Wrap(err, "failed to sign audit export")
	}
	return export, nil
}

func (u *auditLogUseCase) ExportJSON(ctx context.Context) ([]byte, error) {
	export, err := u.Export(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrSigningFailure, "failed to encode audit export")
	}
	return payload, nil
}

func (u *auditLogUseCase) PublicKeyPEM() ([]byte, error) {
	return u.signer.PublicKeyPEM()
}
