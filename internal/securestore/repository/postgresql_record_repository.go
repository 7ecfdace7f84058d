package repository

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/allisson/trustkit/internal/errors"
	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
)

// PostgreSQLRecordRepository implements record persistence for PostgreSQL databases.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLRecordRepository creates a new PostgreSQL record repository.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}

// Get returns the value stored under key. Returns ErrNotFound if absent.
func (p *PostgreSQLRecordRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM records WHERE record_key = $1`

	var value []byte
	err := p.db.QueryRowContext(ctx, query, key).Scan(&value)
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
func (p *PostgreSQLRecordRepository) GetWithTag(
	ctx context.Context,
	key string,
) (value, tag []byte, err error) {
	query := `SELECT value, tag FROM records WHERE record_key = $1`

	err = p.db.QueryRowContext(ctx, query, key).Scan(&value, &tag)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return value, tag, nil
}

// Set stores a value under key without an integrity tag.
func (p *PostgreSQLRecordRepository) Set(ctx context.Context, key string, value []byte) error {
	return p.SetWithTag(ctx, key, value, nil)
}

// SetWithTag upserts the value and its integrity tag under key in a single
// statement, so readers never observe a value without its matching tag.
func (p *PostgreSQLRecordRepository) SetWithTag(
	ctx context.Context,
	key string,
	value, tag []byte,
) error {
	query := `INSERT INTO records (record_key, value, tag, updated_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (record_key)
			  DO UPDATE SET value = EXCLUDED.value, tag = EXCLUDED.tag, updated_at = EXCLUDED.updated_at`

	_, err := p.db.ExecContext(ctx, query, key, value, tag, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return nil
}

// Delete removes the record under key. Deleting an absent key is not an error.
func (p *PostgreSQLRecordRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM records WHERE record_key = $1`

	if _, err := p.db.ExecContext(ctx, query, key); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return nil
}

// All returns every stored record.
func (p *PostgreSQLRecordRepository) All(
	ctx context.Context,
) (map[string]storeDomain.StoredRecord, error) {
	query := `SELECT record_key, value, tag FROM records`

	rows, err := p.db.QueryContext(ctx, query)
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
func (p *PostgreSQLRecordRepository) Replace(
	ctx context.Context,
	records map[string]storeDomain.StoredRecord,
) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}

	insert := `INSERT INTO records (record_key, value, tag, updated_at) VALUES ($1, $2, $3, $4)`
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
func (p *PostgreSQLRecordRepository) Clear(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}
	return nil
}
