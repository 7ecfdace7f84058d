package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/trustkit/internal/audit/domain"
	"github.com/allisson/trustkit/internal/metrics"
)

// auditLogUseCaseWithMetrics decorates AuditLogUseCase with metrics instrumentation.
type auditLogUseCaseWithMetrics struct {
	next    AuditLogUseCase
	metrics metrics.BusinessMetrics
}

// NewAuditLogUseCaseWithMetrics wraps an AuditLogUseCase with metrics recording.
func NewAuditLogUseCaseWithMetrics(useCase AuditLogUseCase, m metrics.BusinessMetrics) AuditLogUseCase {
	return &auditLogUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *auditLogUseCaseWithMetrics) Record(ctx context.Context, eventType string, metadata map[string]string) {
	a.next.Record(ctx, eventType, metadata)
	a.metrics.RecordOperation(ctx, "audit", "event_record", "success")
}

func (a *auditLogUseCaseWithMetrics) RecordEvent(ctx context.Context, event auditDomain.AuditEvent) {
	a.next.RecordEvent(ctx, event)
	a.metrics.RecordOperation(ctx, "audit", "event_record", "success")
}

func (a *auditLogUseCaseWithMetrics) Events(ctx context.Context) []auditDomain.AuditEvent {
	return a.next.Events(ctx)
}

func (a *auditLogUseCaseWithMetrics) Export(ctx context.Context) (auditDomain.SignedExport, error) {
	start := time.Now()
	export, err := a.next.Export(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "export_sign", status)
	a.metrics.RecordDuration(ctx, "audit", "export_sign", time.Since(start), status)

	return export, err
}

func (a *auditLogUseCaseWithMetrics) ExportJSON(ctx context.Context) ([]byte, error) {
	start := time.Now()
	payload, err := a.next.ExportJSON(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", "export_sign", status)
	a.metrics.RecordDuration(ctx, "audit", "export_sign", time.Since(start), status)

	return payload, err
}

func (a *auditLogUseCaseWithMetrics) PublicKeyPEM() ([]byte, error) {
	return a.next.PublicKeyPEM()
}
