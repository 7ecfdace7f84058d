package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/trustkit/internal/errors"
	storeDomain "github.com/allisson/trustkit/internal/securestore/domain"
	storeService "github.com/allisson/trustkit/internal/securestore/service"
)

// Static local keeper key, test fixture only.
const testKeeperURI = "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="

func newEncryptedRepo(t *testing.T) (*EncryptedRecordRepository, *FileRecordRepository) {
	t.Helper()
	ctx := context.Background()

	inner, err := NewFileRecordRepository(filepath.Join(t.TempDir(), "test.store"))
	require.NoError(t, err)

	keeper, err := storeService.OpenKeeper(ctx, testKeeperURI)
	require.NoError(t, err)
	t.Cleanup(func() { _ = keeper.Close() })

	repo, err := NewEncryptedRecordRepository(
		ctx,
		inner,
		storeService.NewAEADManager(),
		keeper,
		storeDomain.AESGCM,
	)
	require.NoError(t, err)

	return repo, inner
}

func TestEncryptedRecordRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, inner := newEncryptedRepo(t)

	require.NoError(t, repo.SetWithTag(ctx, "k1", []byte("plaintext"), []byte("tag")))

	value, tag, err := repo.GetWithTag(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("plaintext"), value)
	assert.Equal(t, []byte("tag"), tag)

	// The inner repository must only see ciphertext
	sealed, err := inner.Get(ctx, "k1")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "plaintext")
}

func TestEncryptedRecordRepository_DataKeySurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.store")

	keeper, err := storeService.OpenKeeper(ctx, testKeeperURI)
	require.NoError(t, err)
	defer keeper.Close()

	inner, err := NewFileRecordRepository(path)
	require.NoError(t, err)
	repo, err := NewEncryptedRecordRepository(ctx, inner, storeService.NewAEADManager(), keeper, storeDomain.AESGCM)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, "k1", []byte("v1")))

	// Reopen against the same file: the wrapped data key must unwrap and
	// decrypt existing records.
	inner2, err := NewFileRecordRepository(path)
	require.NoError(t, err)
	repo2, err := NewEncryptedRecordRepository(ctx, inner2, storeService.NewAEADManager(), keeper, storeDomain.AESGCM)
	require.NoError(t, err)

	value, err := repo2.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)
}

func TestEncryptedRecordRepository_ReKey(t *testing.T) {
	ctx := context.Background()
	repo, inner := newEncryptedRepo(t)

	require.NoError(t, repo.SetWithTag(ctx, "k1", []byte("v1"), []byte("t1")))
	require.NoError(t, repo.Set(ctx, "k2", []byte("v2")))

	sealedBefore, err := inner.Get(ctx, "k1")
	require.NoError(t, err)

	require.NoError(t, repo.ReKey(ctx))

	// Ciphertext changed, plaintext and tags did not
	sealedAfter, err := inner.Get(ctx, "k1")
	require.NoError(t, err)
	assert.NotEqual(t, sealedBefore, sealedAfter)

	value, tag, err := repo.GetWithTag(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)
	assert.Equal(t, []byte("t1"), tag)

	value, err = repo.Get(ctx, "k2")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
}

func TestEncryptedRecordRepository_AllHidesWrappedKey(t *testing.T) {
	ctx := context.Background()
	repo, _ := newEncryptedRepo(t)

	require.NoError(t, repo.Set(ctx, "k1", []byte("v1")))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.NotContains(t, all, wrappedKeyRecord)
}

func TestEncryptedRecordRepository_ClearProvisionsFreshKey(t *testing.T) {
	ctx := context.Background()
	repo, inner := newEncryptedRepo(t)

	require.NoError(t, repo.Set(ctx, "k1", []byte("v1")))
	require.NoError(t, repo.Clear(ctx))

	_, err := repo.Get(ctx, "k1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// A fresh wrapped key must be in place and writes must keep working
	_, err = inner.Get(ctx, wrappedKeyRecord)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, "k2", []byte("v2")))

	value, err := repo.Get(ctx, "k2")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
}
