// Package repository implements record persistence for the secure store.
// Backends: a local snapshot file (default for on-device use), PostgreSQL and
// MySQL. The EncryptedRecordRepository decorator adds AEAD encryption at rest
// on top of any plain backend.
package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/allisson/trustkit/internal/errors"
	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
)

// fileSnapshot is the on-disk layout of the file backend.
type fileSnapshot struct {
	Records map[string]fileRecord `json:"records"`
}

type fileRecord struct {
	Value []byte `json:"value"`
	Tag   []byte `json:"tag,omitempty"`
}

// FileRecordRepository persists records in a single local file.
//
// The full record map is held in memory and flushed as a JSON snapshot on
// every mutation, written to a temp file and renamed into place so readers
// never observe a partially written store. All methods are safe for
// concurrent use.
type FileRecordRepository struct {
	path string

	mu      sync.RWMutex
	records map[string]fileRecord
}

// NewFileRecordRepository opens (or creates) the snapshot file at path.
func NewFileRecordRepository(path string) (*FileRecordRepository, error) {
	repo := &FileRecordRepository{
		path:    path,
		records: make(map[string]fileRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return repo, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}

	var snapshot fileSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageFailure, "corrupt store file: "+err.Error())
	}
	if snapshot.Records != nil {
		repo.records = snapshot.Records
	}

	return repo, nil
}

// Get returns the value stored under key. Returns ErrNotFound if absent.
func (f *FileRecordRepository) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	record, ok := f.records[key]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return append([]byte(nil), record.Value...), nil
}

// GetWithTag returns the value and integrity tag stored under key as one
// consistent pair. Returns ErrNotFound if absent.
func (f *FileRecordRepository) GetWithTag(ctx context.Context, key string) (value, tag []byte, err error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	record, ok := f.records[key]
	if !ok {
		return nil, nil, apperrors.ErrNotFound
	}
	return append([]byte(nil), record.Value...), append([]byte(nil), record.Tag...), nil
}

// Set stores a value under key without an integrity tag, replacing any
// previous value and tag.
func (f *FileRecordRepository) Set(ctx context.Context, key string, value []byte) error {
	return f.SetWithTag(ctx, key, value, nil)
}

// SetWithTag atomically stores the value and its integrity tag under key.
// On flush failure the previous value remains in place.
func (f *FileRecordRepository) SetWithTag(ctx context.Context, key string, value, tag []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous, hadPrevious := f.records[key]
	f.records[key] = fileRecord{
		Value: append([]byte(nil), value...),
		Tag:   append([]byte(nil), tag...),
	}

	if err := f.flushLocked(); err != nil {
		if hadPrevious {
			f.records[key] = previous
		} else {
			delete(f.records, key)
		}
		return err
	}
	return nil
}

// Delete removes the record under key. Deleting an absent key is not an error.
func (f *FileRecordRepository) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous, hadPrevious := f.records[key]
	if !hadPrevious {
		return nil
	}
	delete(f.records, key)

	if err := f.flushLocked(); err != nil {
		f.records[key] = previous
		return err
	}
	return nil
}

// All returns a copy of every stored record.
func (f *FileRecordRepository) All(ctx context.Context) (map[string]storeDomain.StoredRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]storeDomain.StoredRecord, len(f.records))
	for key, record := range f.records {
		out[key] = storeDomain.StoredRecord{
			Value: append([]byte(nil), record.Value...),
			Tag:   append([]byte(nil), record.Tag...),
		}
	}
	return out, nil
}

// Replace atomically swaps the entire store contents.
func (f *FileRecordRepository) Replace(ctx context.Context, records map[string]storeDomain.StoredRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous := f.records
	next := make(map[string]fileRecord, len(records))
	for key, record := range records {
		next[key] = fileRecord{
			Value: append([]byte(nil), record.Value...),
			Tag:   append([]byte(nil), record.Tag...),
		}
	}
	f.records = next

	if err := f.flushLocked(); err != nil {
		f.records = previous
		return err
	}
	return nil
}

// Clear irreversibly erases all records.
func (f *FileRecordRepository) Clear(ctx context.Context) error {
	return f.Replace(ctx, nil)
}

// flushLocked writes the snapshot to a temp file and renames it into place.
// Callers must hold the write lock.
func (f *FileRecordRepository) flushLocked() error {
	data, err := json.Marshal(fileSnapshot{Records: f.records})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".trustkit-*")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return nil
}
