package repository

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"
	"sync"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/allisson/trustkit/internal/errors"
	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
	storeService "github.com/allisson/trustkit/internal/securestore/service"
)

// wrappedKeyRecord is the reserved inner key holding the keeper-wrapped data
// key. It is never visible through the decorator's own API.
const wrappedKeyRecord = "__wrapped_data_key"

// PlainRecordRepository is the capability the decorator wraps: any
// authenticated key-value backend that can swap its contents atomically.
type PlainRecordRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetWithTag(ctx context.Context, key string) (value, tag []byte, err error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTag(ctx context.Context, key string, value, tag []byte) error
	Delete(ctx context.Context, key string) error
	All(ctx context.Context) (map[string]storeDomain.StoredRecord, error)
	Replace(ctx context.Context, records map[string]storeDomain.StoredRecord) error
	Clear(ctx context.Context) error
}

// valueEnvelope is the serialized form of an encrypted record value.
type valueEnvelope struct {
	Algorithm  storeDomain.Algorithm `json:"alg"`
	Nonce      []byte                `json:"nonce"`
	Ciphertext []byte                `json:"ct"`
}

// EncryptedRecordRepository decorates a plain repository with AEAD encryption
// at rest under a keeper-wrapped data key.
//
// Record values are sealed with the record key as AAD, binding each ciphertext
// to its slot. Integrity tags pass through unencrypted: they are MACs, not
// secrets, and verification must work without decrypting. ReKey re-encrypts
// the whole store under a fresh data key; per-record keys and tags are
// unaffected because the data key only governs encryption at rest.
type EncryptedRecordRepository struct {
	inner       PlainRecordRepository
	aeadManager storeService.AEADManager
	keeper      storeService.DataKeyKeeper
	algorithm   storeDomain.Algorithm

	mu      sync.RWMutex
	dataKey []byte
}

// NewEncryptedRecordRepository loads the wrapped data key from the inner
// repository, creating and persisting a fresh one on first use.
func NewEncryptedRecordRepository(
	ctx context.Context,
	inner PlainRecordRepository,
	aeadManager storeService.AEADManager,
	keeper storeService.DataKeyKeeper,
	algorithm storeDomain.Algorithm,
) (*EncryptedRecordRepository, error) {
	repo := &EncryptedRecordRepository{
		inner:       inner,
		aeadManager: aeadManager,
		keeper:      keeper,
		algorithm:   algorithm,
	}

	wrapped, err := inner.Get(ctx, wrappedKeyRecord)
	switch {
	case err == nil:
		dataKey, err := keeper.Unwrap(ctx, wrapped)
		if err != nil {
			return nil, err
		}
		repo.dataKey = dataKey
	case apperrors.Is(err, apperrors.ErrNotFound):
		if err := repo.provisionDataKeyLocked(ctx); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return repo, nil
}

// provisionDataKeyLocked generates a fresh data key and persists its wrapped
// form. Callers must hold the write lock or be the only owner.
func (e *EncryptedRecordRepository) provisionDataKeyLocked(ctx context.Context) error {
	dataKey := make([]byte, storeDomain.KeySize)
	if _, err := rand.Read(dataKey); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, "failed to generate data key")
	}

	wrapped, err := e.keeper.Wrap(ctx, dataKey)
	if err != nil {
		storeDomain.Zero(dataKey)
		return err
	}
	if err := e.inner.Set(ctx, wrappedKeyRecord, wrapped); err != nil {
		storeDomain.Zero(dataKey)
		return err
	}

	storeDomain.Zero(e.dataKey)
	e.dataKey = dataKey
	return nil
}

// encryptionKeyInfo is the HKDF label separating the record encryption subkey
// from any other use of the data key.
const encryptionKeyInfo = "trustkit/record-encryption"

// cipherKey derives the AEAD subkey for record encryption from the data key.
// The raw data key is only ever wrapped and unwrapped, never used as a cipher
// key directly.
func (e *EncryptedRecordRepository) cipherKey() ([]byte, error) {
	subkey := make([]byte, storeDomain.KeySize)
	reader := hkdf.New(sha256.New, e.dataKey, nil, []byte(encryptionKeyInfo))
	if _, err := io.ReadFull(reader, subkey); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageFailure, "failed to derive record key")
	}
	return subkey, nil
}

// seal encrypts value with the current data key, using key as AAD.
func (e *EncryptedRecordRepository) seal(key string, value []byte) ([]byte, error) {
	subkey, err := e.cipherKey()
	if err != nil {
		return nil, err
	}
	defer storeDomain.Zero(subkey)

	cipher, err := e.aeadManager.CreateCipher(subkey, e.algorithm)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := cipher.Encrypt(value, []byte(key))
	if err != nil {
		return nil, err
	}

	return json.Marshal(valueEnvelope{
		Algorithm:  e.algorithm,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	})
}

// open decrypts a sealed envelope, using key as AAD.
func (e *EncryptedRecordRepository) open(key string, sealed []byte) ([]byte, error) {
	var envelope valueEnvelope
	if err := json.Unmarshal(sealed, &envelope); err != nil {
		return nil, storeDomain.ErrDecryptionFailed
	}

	subkey, err := e.cipherKey()
	if err != nil {
		return nil, err
	}
	defer storeDomain.Zero(subkey)

	cipher, err := e.aeadManager.CreateCipher(subkey, envelope.Algorithm)
	if err != nil {
		return nil, err
	}

	value, err := cipher.Decrypt(envelope.Ciphertext, envelope.Nonce, []byte(key))
	if err != nil {
		return nil, storeDomain.ErrDecryptionFailed
	}
	return value, nil
}

// Get returns the decrypted value stored under key.
func (e *EncryptedRecordRepository) Get(ctx context.Context, key string) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sealed, err := e.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return e.open(key, sealed)
}

// GetWithTag returns the decrypted value and its integrity tag as one
// consistent pair.
func (e *EncryptedRecordRepository) GetWithTag(
	ctx context.Context,
	key string,
) (value, tag []byte, err error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sealed, tag, err := e.inner.GetWithTag(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	value, err = e.open(key, sealed)
	if err != nil {
		return nil, nil, err
	}
	return value, tag, nil
}

// Set stores a value under key without an integrity tag.
func (e *EncryptedRecordRepository) Set(ctx context.Context, key string, value []byte) error {
	return e.SetWithTag(ctx, key, value, nil)
}

// SetWithTag atomically stores the encrypted value and its integrity tag.
func (e *EncryptedRecordRepository) SetWithTag(
	ctx context.Context,
	key string,
	value, tag []byte,
) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sealed, err := e.seal(key, value)
	if err != nil {
		return err
	}
	return e.inner.SetWithTag(ctx, key, sealed, tag)
}

// Delete removes the record under key.
func (e *EncryptedRecordRepository) Delete(ctx context.Context, key string) error {
	return e.inner.Delete(ctx, key)
}

// All returns every stored record, decrypted.
func (e *EncryptedRecordRepository) All(
	ctx context.Context,
) (map[string]storeDomain.StoredRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sealed, err := e.inner.All(ctx)
	if err != nil {
		return nil, err
	}

	records := make(map[string]storeDomain.StoredRecord, len(sealed))
	for key, record := range sealed {
		if key == wrappedKeyRecord {
			continue
		}
		value, err := e.open(key, record.Value)
		if err != nil {
			return nil, err
		}
		records[key] = storeDomain.StoredRecord{Value: value, Tag: record.Tag}
	}
	return records, nil
}

// ReKey re-encrypts the entire store under a fresh data key and persists the
// new wrapped key in the same atomic swap. Integrity tags are preserved.
func (e *EncryptedRecordRepository) ReKey(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sealed, err := e.inner.All(ctx)
	if err != nil {
		return err
	}

	// Decrypt everything under the old key first so a failure leaves the
	// store untouched.
	plain := make(map[string]storeDomain.StoredRecord, len(sealed))
	for key, record := range sealed {
		if key == wrappedKeyRecord {
			continue
		}
		value, err := e.open(key, record.Value)
		if err != nil {
			return err
		}
		plain[key] = storeDomain.StoredRecord{Value: value, Tag: record.Tag}
	}

	newKey := make([]byte, storeDomain.KeySize)
	if _, err := rand.Read(newKey); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, "failed to generate data key")
	}
	wrapped, err := e.keeper.Wrap(ctx, newKey)
	if err != nil {
		storeDomain.Zero(newKey)
		return err
	}

	oldKey := e.dataKey
	e.dataKey = newKey

	next := make(map[string]storeDomain.StoredRecord, len(plain)+1)
	for key, record := range plain {
		resealed, err := e.seal(key, record.Value)
		if err != nil {
			e.dataKey = oldKey
			storeDomain.Zero(newKey)
			return err
		}
		next[key] = storeDomain.StoredRecord{Value: resealed, Tag: record.Tag}
	}
	next[wrappedKeyRecord] = storeDomain.StoredRecord{Value: wrapped}

	if err := e.inner.Replace(ctx, next); err != nil {
		e.dataKey = oldKey
		storeDomain.Zero(newKey)
		return err
	}

	storeDomain.Zero(oldKey)
	return nil
}

// Clear irreversibly erases all records and provisions a fresh data key.
func (e *EncryptedRecordRepository) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.inner.Clear(ctx); err != nil {
		return err
	}
	return e.provisionDataKeyLocked(ctx)
}

// Close zeroes the in-memory data key and releases the keeper.
func (e *EncryptedRecordRepository) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	storeDomain.Zero(e.dataKey)
	e.dataKey = nil
	return e.keeper.Close()
}
