package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/allisson/trustkit/internal/errors"
	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
	"github.com/allisson/trustkit/internal/securestore/service"
)

// Reserved record keys. Application keys never collide because these are
// written exclusively by this package.
const (
	saltKeyPrefix   = "salt_"
	accessLogsKey   = "access_logs"
	lastRotationKey = "last_rotation"
)

type secureStoreUseCase struct {
	recordRepository RecordRepository
	keyDeriver       service.KeyDeriver
	rotationInterval time.Duration
	iterations       int
	saltGroup        singleflight.Group
	logMu            sync.Mutex
}

// NewSecureStoreUseCase returns a SecureStoreUseCase backed by the given
// repository and key deriver. rotationInterval bounds the age of the at-rest
// data key.
func NewSecureStoreUseCase(recordRepository RecordRepository, keyDeriver service.KeyDeriver, rotationInterval time.Duration, iterations int) SecureStoreUseCase {
	return &secureStoreUseCase{
		recordRepository: recordRepository,
		keyDeriver:       keyDeriver,
		rotationInterval: rotationInterval,
		iterations:       iterations,
	}
}

func (u *secureStoreUseCase) Initialize(ctx context.Context) error {
	if _, err := u.RotateKeyIfDue(ctx); err != nil {
		return errors.Wrap(err, "failed to initialize secure store")
	}
	return nil
}

func (u *secureStoreUseCase) StoreWithIntegrity(ctx context.Context, key string, value []byte, userID string) error {
	if key == "" || userID == "" {
		return errors.Wrap(errors.ErrInvalidInput, "key and userID are required")
	}
	salt, err := u.getOrCreateSalt(ctx, userID)
	if err != nil {
		return err
	}
	tag, err := u.keyDeriver.ComputeTag(userID, salt, value)
	if err != nil {
		return errors.Wrap(err, "failed to compute integrity tag")
	}
	if err := u.recordRepository.SetWithTag(ctx, key, value, tag); err != nil {
		return errors.Wrap(err, "failed to store record")
	}
	return nil
}

func (u *secureStoreUseCase) VerifyIntegrity(ctx context.Context, key string, userID string) bool {
	value, tag, err := u.recordRepository.GetWithTag(ctx, key)
	if err != nil || tag == nil {
		return false
	}
	// Verification never creates missing salts. A store with no salt for
	// this user cannot have produced the tag.
	salt, err := u.recordRepository.Get(ctx, saltKeyPrefix+userID)
	if err != nil {
		return false
	}
	ok, err := u.keyDeriver.VerifyTag(userID, salt, value, tag)
	if err != nil {
		return false
	}
	return ok
}

func (u *secureStoreUseCase) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := u.recordRepository.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (u *secureStoreUseCase) Store(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.Wrap(errors.ErrInvalidInput, "key is required")
	}
	if err := u.recordRepository.Set(ctx, key, value); err != nil {
		return errors.Wrap(err, "failed to store record")
	}
	return nil
}

func (u *secureStoreUseCase) Remove(ctx context.Context, key string) error {
	if err := u.recordRepository.Delete(ctx, key); err != nil && !errors.Is(err, errors.ErrNotFound) {
		return errors.Wrap(err, "failed to remove record")
	}
	return nil
}

func (u *secureStoreUseCase) RotateKeyIfDue(ctx context.Context) (bool, error) {
	state, err := u.rotationState(ctx)
	if err != nil {
		return false, err
	}
	now := time.Now()
	if !state.Due(now, u.rotationInterval) {
		return false, nil
	}
	if err := u.recordRepository.ReKey(ctx); err != nil {
		return false, errors.Wrap(err, "failed to rotate data key")
	}
	stamp := strconv.FormatInt(now.UnixMilli(), 10)
	if err := u.recordRepository.Set(ctx, lastRotationKey, []byte(stamp)); err != nil {
		return false, errors.Wrap(err, "failed to persist rotation timestamp")
	}
	u.LogAccess(ctx, "key_rotation", "data key rotated")
	return true, nil
}

func (u *secureStoreUseCase) ClearAll(ctx context.Context) error {
	if err := u.recordRepository.Clear(ctx); err != nil {
		return errors.Wrap(err, "failed to clear store")
	}
	u.LogAccess(ctx, "clear_all", "all stored data erased")
	return nil
}

func (u *secureStoreUseCase) Anonymize(data string) string {
	return strings.Repeat("*", utf8.RuneCountInString(data))
}

func (u *secureStoreUseCase) LogAccess(ctx context.Context, eventType, message string) {
	u.logMu.Lock()
	defer u.logMu.Unlock()

	existing, err := u.recordRepository.Get(ctx, accessLogsKey)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		slog.Warn("access log read failed", "error", err)
		return
	}
	line := fmt.Sprintf("[%d][%s] %s", time.Now().UnixMilli(), strings.ToUpper(eventType), message)
	var buf strings.Builder
	if len(existing) > 0 {
		buf.Write(existing)
		buf.WriteByte('\n')
	}
	buf.WriteString(line)
	if err := u.recordRepository.Set(ctx, accessLogsKey, []byte(buf.String())); err != nil {
		slog.Warn("access log write failed", "error", err)
	}
}

func (u *secureStoreUseCase) AccessLogs(ctx context.Context) ([]string, error) {
	raw, err := u.recordRepository.Get(ctx, accessLogsKey)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return []string{}, nil
		}
		return nil, errors.Wrap(err, "failed to read access logs")
	}
	if len(raw) == 0 {
		return []string{}, nil
	}
	return strings.Split(string(raw), "\n"), nil
}

func (u *secureStoreUseCase) Info(ctx context.Context) map[string]string {
	info := map[string]string{
		"encryption":     "authenticated encryption at rest",
		"key_derivation": fmt.Sprintf("PBKDF2-HMAC-SHA256 (%d iterations)", u.iterations),
		"key_size_bits":  strconv.Itoa(storeDomain.KeySize * 8),
		"integrity":      "HMAC-SHA256 per-user tags",
		"rotation":       u.rotationInterval.String(),
		"last_rotation":  "never",
	}
	state, err := u.rotationState(ctx)
	if err == nil && !state.LastRotation.IsZero() {
		info["last_rotation"] = state.LastRotation.UTC().Format(time.RFC3339)
	}
	return info
}

// getOrCreateSalt returns the persisted salt for userID, generating and
// storing a fresh one on first use. Concurrent first uses for the same user
// collapse to a single generation.
func (u *secureStoreUseCase) getOrCreateSalt(ctx context.Context, userID string) ([]byte, error) {
	key := saltKeyPrefix + userID
	result, err, _ := u.saltGroup.Do(key, func() (interface{}, error) {
		salt, err := u.recordRepository.Get(ctx, key)
		if err == nil {
			return salt, nil
		}
		if !errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Wrap(err, "failed to read user salt")
		}
		salt = make([]byte, storeDomain.SaltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, errors.Wrap(err, "failed to generate user salt")
		}
		if err := u.recordRepository.Set(ctx, key, salt); err != nil {
			return nil, errors.Wrap(err, "failed to persist user salt")
		}
		return salt, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (u *secureStoreUseCase) rotationState(ctx context.Context) (storeDomain.RotationState, error) {
	raw, err := u.recordRepository.Get(ctx, lastRotationKey)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return storeDomain.RotationState{}, nil
		}
		return storeDomain.RotationState{}, errors.Wrap(err, "failed to read rotation state")
	}
	millis, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return storeDomain.RotationState{}, nil
	}
	return storeDomain.RotationState{LastRotation: time.UnixMilli(millis)}, nil
}
