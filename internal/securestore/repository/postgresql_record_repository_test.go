package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/trustkit/internal/errors"
	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
)

func TestPostgreSQLRecordRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM records WHERE record_key = \$1`).
			WithArgs("k1").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("v1")))

		value, err := repo.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), value)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM records WHERE record_key = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRecordRepository_GetWithTag(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)

	mock.ExpectQuery(`SELECT value, tag FROM records WHERE record_key = \$1`).
		WithArgs("k1").
		WillReturnRows(sqlmock.NewRows([]string{"value", "tag"}).AddRow([]byte("v1"), []byte("t1")))

	value, tag, err := repo.GetWithTag(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)
	assert.Equal(t, []byte("t1"), tag)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRecordRepository_SetWithTag(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)

	mock.ExpectExec(`INSERT INTO records .+ ON CONFLICT \(record_key\)`).
		WithArgs("k1", []byte("v1"), []byte("t1"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SetWithTag(context.Background(), "k1", []byte("v1"), []byte("t1"))
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRecordRepository_SetStorageFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)

	mock.ExpectExec(`INSERT INTO records`).
		WillReturnError(sql.ErrConnDone)

	err = repo.Set(context.Background(), "k1", []byte("v1"))
	assert.ErrorIs(t, err, apperrors.ErrStorageFailure)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRecordRepository_Replace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM records`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO records`).
		WithArgs("k1", []byte("v1"), []byte("t1"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.Replace(context.Background(), map[string]storeDomain.StoredRecord{
		"k1": {Value: []byte("v1"), Tag: []byte("t1")},
	})
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRecordRepository_All(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)

	mock.ExpectQuery(`SELECT record_key, value, tag FROM records`).
		WillReturnRows(sqlmock.NewRows([]string{"record_key", "value", "tag"}).
			AddRow("k1", []byte("v1"), []byte("t1")).
			AddRow("k2", []byte("v2"), nil))

	records, err := repo.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, []byte("v1"), records["k1"].Value)
	assert.Nil(t, records["k2"].Tag)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRecordRepository_Clear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgreSQLRecordRepository(db)

	mock.ExpectExec(`DELETE FROM records`).WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.Clear(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
