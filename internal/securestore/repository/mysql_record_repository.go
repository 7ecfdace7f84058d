package repository

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/allisson/trustkit/internal/errors"
	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
)

// MySQLRecordRepository implements record persistence for MySQL databases.
type MySQLRecordRepository struct {
	db *sql.DB
}

// NewMySQLRecordRepository creates a new MySQL record repository.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}

// Get returns the value stored under key. Returns ErrNotFound if absent.
func (m *MySQLRecordRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM records WHERE record_key = ?`

	var value []byte
	err := m.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return value, nil
}

// GetWithTag returns the value and integrity tag stored under key as one
// consistent pair. Returns ErrNotFound if absent.
func (m *MySQLRecordRepository) GetWithTag(
	ctx context.Context,
	key string,
) (value, tag []byte, err error) {
	query := `SELECT value, tag FROM records WHERE record_key = ?`

	err = m.db.QueryRowContext(ctx, query, key).Scan(&value, &tag)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return value, tag, nil
}

// Set stores a value under key without an integrity tag.
func (m *MySQLRecordRepository) Set(ctx context.Context, key string, value []byte) error {
	return m.SetWithTag(ctx, key, value, nil)
}

// SetWithTag upserts the value and its integrity tag under key in a single
// statement, so readers never observe a value without its matching tag.
func (m *MySQLRecordRepository) SetWithTag(
	ctx context.Context,
	key string,
	value, tag []byte,
) error {
	query := `INSERT INTO records (record_key, value, tag, updated_at)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE value = VALUES(value), tag = VALUES(tag), updated_at = VALUES(updated_at)`

	_, err := m.db.ExecContext(ctx, query, key, value, tag, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return nil
}

// Delete removes the record under key. Deleting an absent key is not an error.
func (m *MySQLRecordRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM records WHERE record_key = ?`

	if _, err := m.db.ExecContext(ctx, query, key); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return nil
}

// All returns every stored record.
func (m *MySQLRecordRepository) All(
	ctx context.Context,
) (map[string]storeDomain.StoredRecord, error) {
	query := `SELECT record_key, value, tag FROM records`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	defer rows.Close()

	records := make(map[string]storeDomain.StoredRecord)
	for rows.Next() {
		var key string
		var value, tag []byte
		if err := rows.Scan(&key, &value, &tag); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
		}
		records[key] = storeDomain.StoredRecord{Value: value, Tag: tag}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return records, nil
}

// Replace atomically swaps the entire store contents in a transaction.
func (m *MySQLRecordRepository) Replace(
	ctx context.Context,
	records map[string]storeDomain.StoredRecord,
) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}

	insert := `INSERT INTO records (record_key, value, tag, updated_at) VALUES (?, ?, ?, ?)`
	now := time.Now().UTC()
	for key, record := range records {
		if _, err := tx.ExecContext(ctx, insert, key, record.Value, record.Tag, now); err != nil {
			return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return nil
}

// Clear irreversibly erases all records.
func (m *MySQLRecordRepository) Clear(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return nil
}
