// Package usecase implements the secure store contract: integrity-tagged
// writes, fail-closed verification, at-rest key rotation and the local access
// log.
package usecase

import (
	"context"

	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
)

// RecordRepository is the persistence capability the secure store builds on:
// authenticated encrypted key-value storage with atomic value+tag pairs and
// whole-store re-encryption.
type RecordRepository interface {
	// Get returns the value stored under key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetWithTag returns the value and its integrity tag as one consistent pair.
	GetWithTag(ctx context.Context, key string) (value, tag []byte, err error)

	// Set stores a value under key without an integrity tag.
	Set(ctx context.Context, key string, value []byte) error

	// SetWithTag atomically stores the value and its integrity tag under key.
	SetWithTag(ctx context.Context, key string, value, tag []byte) error

	// Delete removes the record under key.
	Delete(ctx context.Context, key string) error

	// All returns every stored record.
	All(ctx context.Context) (map[string]storeDomain.StoredRecord, error)

	// Clear irreversibly erases all records.
	Clear(ctx context.Context) error

	// ReKey re-encrypts the store under a fresh at-rest data key.
	ReKey(ctx context.Context) error
}

// SecureStoreUseCase is the host-facing contract of the secure store.
type SecureStoreUseCase interface {
	// Initialize prepares the store and runs a rotation check. Idempotent.
	Initialize(ctx context.Context) error

	// StoreWithIntegrity persists value under key together with an HMAC tag
	// derived from the owner's per-user key.
	StoreWithIntegrity(ctx context.Context, key string, value []byte, userID string) error

	// VerifyIntegrity recomputes the integrity tag of the stored value and
	// reports whether it matches. Fails closed: any missing data or
	// cryptographic error yields false, never an error.
	VerifyIntegrity(ctx context.Context, key string, userID string) bool

	// Get returns the stored value without an integrity check. Callers
	// needing assurance must call VerifyIntegrity explicitly.
	Get(ctx context.Context, key string) ([]byte, error)

	// Store persists value under key without the per-user integrity layer.
	Store(ctx context.Context, key string, value []byte) error

	// Remove deletes the record under key. Removing an absent key is not an
	// error.
	Remove(ctx context.Context, key string) error

	// RotateKeyIfDue rotates the at-rest data key when the rotation interval
	// has elapsed, re-encrypting all stored records. Reports whether
	// rotation occurred.
	RotateKeyIfDue(ctx context.Context) (bool, error)

	// ClearAll irreversibly erases all records, salts and rotation state.
	ClearAll(ctx context.Context) error

	// Anonymize masks data for display. Lossy and deterministic; a display
	// utility, not a security boundary.
	Anonymize(data string) string

	// LogAccess appends a line to the local unsigned access log. Best
	// effort: never fails outward.
	LogAccess(ctx context.Context, eventType, message string)

	// AccessLogs returns the local access log lines in append order.
	AccessLogs(ctx context.Context) ([]string, error)

	// Info returns display facts about the store's protection state.
	Info(ctx context.Context) map[string]string
}
