package usecase

import (
	"context"
	"time"

	"github.com/allisson/trustkit/internal/metrics"
	zerotrustDomain "github.com/allisson/trustkit/internal/zerotrust/domain"
)

// sessionManagerWithMetrics decorates SessionManager with metrics instrumentation.
type sessionManagerWithMetrics struct {
	next    SessionManager
	metrics metrics.BusinessMetrics
}

// NewSessionManagerWithMetrics wraps a SessionManager with metrics recording.
func NewSessionManagerWithMetrics(manager SessionManager, m metrics.BusinessMetrics) SessionManager {
	return &sessionManagerWithMetrics{
		next:    manager,
		metrics: m,
	}
}

func (s *sessionManagerWithMetrics) StartSession(ctx context.Context) (string, error) {
	start := time.Now()
	token, err := s.next.StartSession(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "zerotrust", "session_start", status)
	s.metrics.RecordDuration(ctx, "zerotrust", "session_start", time.Since(start), status)

	return token, err
}

func (s *sessionManagerWithMetrics) ValidateSession(ctx context.Context, token string) bool {
	ok := s.next.ValidateSession(ctx, token)

	status := "success"
	if !ok {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, "zerotrust", "session_validate", status)

	return ok
}

func (s *sessionManagerWithMetrics) SessionStatus(ctx context.Context, token string) SessionStatus {
	return s.next.SessionStatus(ctx, token)
}

func (s *sessionManagerWithMetrics) EndSession(ctx context.Context) error {
	err := s.next.EndSession(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, "zerotrust", "session_end", status)

	return err
}

func (s *sessionManagerWithMetrics) AuthorizeOperation(ctx context.Context, token string, op zerotrustDomain.SensitiveOperation) error {
	start := time.Now()
	err := s.next.AuthorizeOperation(ctx, token, op)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "zerotrust", "operation_authorize", status)
	s.metrics.RecordDuration(ctx, "zerotrust", "operation_authorize", time.Since(start), status)

	return err
}

func (s *sessionManagerWithMetrics) CheckEnvironment(ctx context.Context) bool {
	ok := s.next.CheckEnvironment(ctx)

	status := "success"
	if !ok {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, "zerotrust", "environment_check", status)

	return ok
}

func (s *sessionManagerWithMetrics) Suspicious(ctx context.Context) (bool, error) {
	return s.next.Suspicious(ctx)
}

func (s *sessionManagerWithMetrics) MarkSuspicious(ctx context.Context, reason string) error {
	err := s.next.MarkSuspicious(ctx, reason)

	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, "zerotrust", "mark_suspicious", status)

	return err
}

func (s *sessionManagerWithMetrics) ClearSuspicious(ctx context.Context) error {
	err := s.next.ClearSuspicious(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, "zerotrust", "clear_suspicious", status)

	return err
}
