package usecase

import (
	"context"
	"time"

	"github.com/allisson/trustkit/internal/metrics"
)

// secureStoreUseCaseWithMetrics decorates SecureStoreUseCase with metrics instrumentation.
type secureStoreUseCaseWithMetrics struct {
	next    SecureStoreUseCase
	metrics metrics.BusinessMetrics
}

// NewSecureStoreUseCaseWithMetrics wraps a SecureStoreUseCase with metrics recording.
func NewSecureStoreUseCaseWithMetrics(useCase SecureStoreUseCase, m metrics.BusinessMetrics) SecureStoreUseCase {
	return &secureStoreUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *secureStoreUseCaseWithMetrics) Initialize(ctx context.Context) error {
	start := time.Now()
	err := s.next.Initialize(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "securestore", "store_initialize", status)
	s.metrics.RecordDuration(ctx, "securestore", "store_initialize", time.Since(start), status)

	return err
}

func (s *secureStoreUseCaseWithMetrics) StoreWithIntegrity(ctx context.Context, key string, value []byte, userID string) error {
	start := time.Now()
	err := s.next.StoreWithIntegrity(ctx, key, value, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "securestore", "store_with_integrity", status)
	s.metrics.RecordDuration(ctx, "securestore", "store_with_integrity", time.Since(start), status)

	return err
}

func (s *secureStoreUseCaseWithMetrics) VerifyIntegrity(ctx context.Context, key string, userID string) bool {
	start := time.Now()
	ok := s.next.VerifyIntegrity(ctx, key, userID)

	status := "success"
	if !ok {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "securestore", "verify_integrity", status)
	s.metrics.RecordDuration(ctx, "securestore", "verify_integrity", time.Since(start), status)

	return ok
}

func (s *secureStoreUseCaseWithMetrics) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "securestore", "record_get", status)
	s.metrics.RecordDuration(ctx, "securestore", "record_get", time.Since(start), status)

	return value, err
}

func (s *secureStoreUseCaseWithMetrics) Store(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Store(ctx, key, value)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "securestore", "record_store", status)
	s.metrics.RecordDuration(ctx, "securestore", "record_store", time.Since(start), status)

	return err
}

func (s *secureStoreUseCaseWithMetrics) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Remove(ctx, key)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "securestore", "record_remove", status)
	s.metrics.RecordDuration(ctx, "securestore", "record_remove", time.Since(start), status)

	return err
}

func (s *secureStoreUseCaseWithMetrics) RotateKeyIfDue(ctx context.Context) (bool, error) {
	start := time.Now()
	rotated, err := s.next.RotateKeyIfDue(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "securestore", "key_rotation_check", status)
	s.metrics.RecordDuration(ctx, "securestore", "key_rotation_check", time.Since(start), status)

	return rotated, err
}

func (s *secureStoreUseCaseWithMetrics) ClearAll(ctx context.Context) error {
	start := time.Now()
	err := s.next.ClearAll(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "securestore", "store_clear", status)
	s.metrics.RecordDuration(ctx, "securestore", "store_clear", time.Since(start), status)

	return err
}

func (s *secureStoreUseCaseWithMetrics) Anonymize(data string) string {
	return s.next.Anonymize(data)
}

func (s *secureStoreUseCaseWithMetrics) LogAccess(ctx context.Context, eventType, message string) {
	s.next.LogAccess(ctx, eventType, message)
}

func (s *secureStoreUseCaseWithMetrics) AccessLogs(ctx context.Context) ([]string, error) {
	start := time.Now()
	logs, err := s.next.AccessLogs(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "securestore", "access_logs_get", status)
	s.metrics.RecordDuration(ctx, "securestore", "access_logs_get", time.Since(start), status)

	return logs, err
}

func (s *secureStoreUseCaseWithMetrics) Info(ctx context.Context) map[string]string {
	return s.next.Info(ctx)
}
