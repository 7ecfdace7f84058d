package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	auditDomain "github.com/allisson/trustkit/internal/audit/domain"
	auditUsecase "github.com/allisson/trustkit/internal/audit/usecase"
	"github.com/allisson/trustkit/internal/errors"
	"github.com/allisson/trustkit/internal/ratelimit"
	storeUsecase "github.com/allisson/trustkit/internal/securestore/usecase"
	zerotrustDomain "github.com/allisson/trustkit/internal/zerotrust/domain"
	"github.com/allisson/trustkit/internal/zerotrust/service"
)

// Persisted session state keys in the secure store.
const (
	sessionTokenKey   = "session_token"
	sessionStartKey   = "session_start"
	suspiciousFlagKey = "suspicious_flag"
)

type sessionManager struct {
	store        storeUsecase.SecureStoreUseCase
	tokenService service.TokenService
	attestor     service.Attestor
	limiter      *ratelimit.Limiter
	auditLog     auditUsecase.AuditLogUseCase

	sessionDuration time.Duration
	cooldown        time.Duration
	now             func() time.Time

	mu        sync.Mutex
	startedAt time.Time
	lastOpAt  map[zerotrustDomain.SensitiveOperation]time.Time
}

// NewSessionManager returns a SessionManager persisting session state through
// the secure store. sessionDuration bounds session lifetime; cooldown is the
// minimum spacing between executions of the same sensitive operation.
func NewSessionManager(
	store storeUsecase.SecureStoreUseCase,
	tokenService service.TokenService,
	attestor service.Attestor,
	limiter *ratelimit.Limiter,
	auditLog auditUsecase.AuditLogUseCase,
	sessionDuration time.Duration,
	cooldown time.Duration,
) SessionManager {
	return &sessionManager{
		store:           store,
		tokenService:    tokenService,
		attestor:        attestor,
		limiter:         limiter,
		auditLog:        auditLog,
		sessionDuration: sessionDuration,
		cooldown:        cooldown,
		now:             time.Now,
		lastOpAt:        map[zerotrustDomain.SensitiveOperation]time.Time{},
	}
}

func (m *sessionManager) StartSession(ctx context.Context) (string, error) {
	plainToken, hashedToken, err := m.tokenService.GenerateToken()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if err := m.store.Store(ctx, sessionTokenKey, []byte(hashedToken)); err != nil {
		return "", errors.Wrap(err, "failed to persist session token")
	}
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	if err := m.store.Store(ctx, sessionStartKey, []byte(stamp)); err != nil {
		return "", errors.Wrap(err, "failed to persist session start")
	}

	m.startedAt = now
	m.lastOpAt = map[zerotrustDomain.SensitiveOperation]time.Time{}

	m.auditLog.Record(ctx, auditDomain.EventTypeSessionEvent, map[string]string{"action": "session_started"})
	return plainToken, nil
}

func (m *sessionManager) ValidateSession(ctx context.Context, token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validateLocked(ctx, token)
}

func (m *sessionManager) SessionStatus(ctx context.Context, token string) SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.validateLocked(ctx, token) {
		return SessionStatus{}
	}
	return SessionStatus{
		Active:    true,
		Remaining: m.sessionDuration - m.now().Sub(m.startedAt),
	}
}

func (m *sessionManager) EndSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endSessionLocked(ctx, "session_ended")
}

func (m *sessionManager) AuthorizeOperation(ctx context.Context, token string, op zerotrustDomain.SensitiveOperation) error {
	if _, err := zerotrustDomain.ParseSensitiveOperation(op.String()); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.validateLocked(ctx, token) {
		m.auditLog.Record(ctx, auditDomain.EventTypeSecurityEvent, map[string]string{
			"action":    "operation_denied",
			"operation": op.String(),
			"reason":    "invalid_session",
		})
		return zerotrustDomain.ErrSessionExpired
	}

	now := m.now()
	if last, ok := m.lastOpAt[op]; ok && now.Sub(last) < m.cooldown {
		m.auditLog.Record(ctx, auditDomain.EventTypeSecurityEvent, map[string]string{
			"action":    "operation_denied",
			"operation": op.String(),
			"reason":    "cooldown",
		})
		return zerotrustDomain.ErrCooldownActive
	}

	if !m.limiter.Allow(op.String()) {
		m.auditLog.Record(ctx, auditDomain.EventTypeSecurityEvent, map[string]string{
			"action":    "operation_denied",
			"operation": op.String(),
			"reason":    "rate_limited",
		})
		return zerotrustDomain.ErrRateLimited
	}

	m.lastOpAt[op] = now
	m.auditLog.Record(ctx, auditDomain.EventTypeSecurityEvent, map[string]string{
		"action":    "operation_authorized",
		"operation": op.String(),
	})
	return nil
}

func (m *sessionManager) CheckEnvironment(ctx context.Context) bool {
	ok := m.attestor.Attest()
	if ok {
		m.auditLog.Record(ctx, auditDomain.EventTypeSecurityEvent, map[string]string{
			"action": "attestation_passed",
		})
		return true
	}
	m.auditLog.Record(ctx, auditDomain.EventTypeThreatDetected, map[string]string{
		"action": "attestation_failed",
	})
	if err := m.MarkSuspicious(ctx, "attestation_failed"); err != nil {
		slog.Warn("failed to persist suspicious flag", "error", err)
	}
	return false
}

func (m *sessionManager) Suspicious(ctx context.Context) (bool, error) {
	value, err := m.store.Get(ctx, suspiciousFlagKey)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to read suspicious flag")
	}
	return string(value) == "true", nil
}

func (m *sessionManager) MarkSuspicious(ctx context.Context, reason string) error {
	if err := m.store.Store(ctx, suspiciousFlagKey, []byte("true")); err != nil {
		return errors.Wrap(err, "failed to persist suspicious flag")
	}
	m.store.LogAccess(ctx, "security_event", "environment marked suspicious: "+reason)
	return nil
}

func (m *sessionManager) ClearSuspicious(ctx context.Context) error {
	if err := m.store.Remove(ctx, suspiciousFlagKey); err != nil {
		return errors.Wrap(err, "failed to clear suspicious flag")
	}
	m.store.LogAccess(ctx, "security_event", "suspicious flag cleared")
	return nil
}

// validateLocked reports token validity and lazily tears down expired
// sessions. Callers hold m.mu.
func (m *sessionManager) validateLocked(ctx context.Context, token string) bool {
	if m.startedAt.IsZero() || token == "" {
		return false
	}
	if m.now().Sub(m.startedAt) >= m.sessionDuration {
		if err := m.endSessionLocked(ctx, "session_expired"); err != nil {
			slog.Warn("failed to tear down expired session", "error", err)
		}
		return false
	}
	hashedToken, err := m.store.Get(ctx, sessionTokenKey)
	if err != nil {
		return false
	}
	return m.tokenService.CompareToken(token, string(hashedToken))
}

func (m *sessionManager) endSessionLocked(ctx context.Context, action string) error {
	hadSession := !m.startedAt.IsZero()
	m.startedAt = time.Time{}
	m.lastOpAt = map[zerotrustDomain.SensitiveOperation]time.Time{}

	if err := m.store.Remove(ctx, sessionTokenKey); err != nil {
		return errors.Wrap(err, "failed to remove session token")
	}
	if err := m.store.Remove(ctx, sessionStartKey); err != nil {
		return errors.Wrap(err, "failed to remove session start")
	}
	if hadSession {
		m.auditLog.Record(ctx, auditDomain.EventTypeSessionEvent, map[string]string{"action": action})
	}
	return nil
}
