package domain

import "github.com/allisson/trustkit/internal/errors"

var (
	// ErrNoSession indicates no session is active.
	ErrNoSession = errors.Wrap(errors.ErrUnauthorized, "no active session")

	// ErrSessionExpired indicates the session outlived its lifetime or the
	// presented token does not match.
	ErrSessionExpired = errors.Wrap(errors.ErrUnauthorized, "session expired or invalid")

	// ErrCooldownActive indicates the operation was attempted before its
	// cooldown elapsed.
	ErrCooldownActive = errors.Wrap(errors.ErrRateLimited, "operation cooldown active")

	// ErrRateLimited indicates the operation exceeded its sliding window
	// attempt budget.
	ErrRateLimited = errors.Wrap(errors.ErrRateLimited, "operation rate limited")

	// ErrAttestationFailed indicates the runtime environment digest did not
	// match the pinned reference.
	ErrAttestationFailed = errors.Wrap(errors.ErrForbidden, "environment attestation failed")
)
