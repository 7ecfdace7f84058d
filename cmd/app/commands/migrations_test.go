package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	logger := testLogger()

	t.Run("file-backend-rejected", func(t *testing.T) {
		err := RunMigrations(logger, "file", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "does not use database migrations")
	})

	t.Run("invalid-connection-string", func(t *testing.T) {
		err := RunMigrations(logger, "postgres", "invalid-connection-string")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})
}
