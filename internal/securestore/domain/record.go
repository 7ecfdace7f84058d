// Package domain defines the entities of the secure record store: integrity
// tagged records, per-user salts and the rotation state of the at-rest key.
package domain

import "time"

// SecureRecord is a stored value and the HMAC tag that binds it to its owner.
//
// The tag is computed as HMAC-SHA256(derivedKey(ownerUserID, salt), value).
// A record whose tag does not match recomputation is invalid and must never
// be trusted as authentic.
type SecureRecord struct {
	Key         string
	Value       []byte
	Tag         []byte
	OwnerUserID string
}

// StoredRecord is the persisted form of a record: the value bytes and the
// optional integrity tag. Both are written and read together so a reader can
// never observe a value with a tag computed for different bytes.
type StoredRecord struct {
	Value []byte
	Tag   []byte
}

// UserSalt is the random salt used to derive a user's integrity key. It is
// created lazily on the first derivation request for a user and stays stable
// for the lifetime of the store so re-derivation reproduces the same key.
type UserSalt struct {
	UserID string
	Salt   []byte
}

// RotationState tracks when the at-rest data key was last rotated.
type RotationState struct {
	LastRotation time.Time
}

// Due reports whether rotation is due at the given time. A zero LastRotation
// (store never rotated) is always due.
func (r RotationState) Due(now time.Time, interval time.Duration) bool {
	return now.Sub(r.LastRotation) > interval
}
