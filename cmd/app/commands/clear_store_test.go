package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/allisson/trustkit/internal/errors"
)

func TestClearStore(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses-without-confirmation", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Store(ctx, "pin", []byte("1234")))

		var out bytes.Buffer
		err := clearStore(ctx, store, testLogger(), &out, false)
		require.Error(t, err)
		require.Contains(t, err.Error(), "--yes")

		// Record must survive the refused erasure
		value, err := store.Get(ctx, "pin")
		require.NoError(t, err)
		require.Equal(t, []byte("1234"), value)
	})

	t.Run("erases-all-records", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Store(ctx, "pin", []byte("1234")))
		require.NoError(t, store.Store(ctx, "answer", []byte("blue")))

		var out bytes.Buffer
		err := clearStore(ctx, store, testLogger(), &out, true)
		require.NoError(t, err)
		require.Contains(t, out.String(), "All records erased")

		_, err = store.Get(ctx, "pin")
		require.ErrorIs(t, err, errors.ErrNotFound)
		_, err = store.Get(ctx, "answer")
		require.ErrorIs(t, err, errors.ErrNotFound)
	})
}
