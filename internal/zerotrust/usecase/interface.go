// Package usecase implements the zero-trust session manager: short-lived
// sessions, per-operation cooldowns, rate limited authorization and
// environment attestation.
package usecase

import (
	"context"
	"time"

	zerotrustDomain "github.com/allisson/trustkit/internal/zerotrust/domain"
)

// SessionStatus describes the current session for display.
type SessionStatus struct {
	Active    bool          `json:"active"`
	Remaining time.Duration `json:"remaining"`
}

// SessionManager is the host-facing contract of the zero-trust layer. At most
// one session is active at a time; starting a session replaces any prior one.
type SessionManager interface {
	// StartSession issues a fresh session and returns its bearer token. The
	// token is returned exactly once; only its hash is persisted.
	StartSession(ctx context.Context) (string, error)

	// ValidateSession reports whether token belongs to the active,
	// unexpired session. Expired sessions are invalidated on observation.
	// Fails closed.
	ValidateSession(ctx context.Context, token string) bool

	// SessionStatus reports whether a session is active and how long the
	// presented token remains valid.
	SessionStatus(ctx context.Context, token string) SessionStatus

	// EndSession invalidates the active session and erases its persisted
	// state. Ending with no active session is not an error.
	EndSession(ctx context.Context) error

	// AuthorizeOperation admits one execution of op under the presented
	// token. It enforces, in order: session validity, the per-operation
	// cooldown, and the sliding window rate limit.
	AuthorizeOperation(ctx context.Context, token string, op zerotrustDomain.SensitiveOperation) error

	// CheckEnvironment attests the runtime environment against the pinned
	// reference. A failed attestation marks the environment suspicious.
	CheckEnvironment(ctx context.Context) bool

	// Suspicious reports the persisted suspicious flag.
	Suspicious(ctx context.Context) (bool, error)

	// MarkSuspicious persists the suspicious flag with the given reason.
	// The flag survives restarts until cleared or the store is erased.
	MarkSuspicious(ctx context.Context, reason string) error

	// ClearSuspicious removes the persisted suspicious flag, returning the
	// environment to the untainted state. Clearing an unset flag is not an
	// error.
	ClearSuspicious(ctx context.Context) error
}
