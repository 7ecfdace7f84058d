package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/trustkit/internal/app"
	"github.com/allisson/trustkit/internal/config"
	storeUseCase "github.com/allisson/trustkit/internal/securestore/usecase"
)

// RunClearStore irreversibly erases every record from the configured store.
// The confirmed flag must be set; erasure is not recoverable.
func RunClearStore(ctx context.Context, writer io.Writer, confirmed bool) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	store, err := container.SecureStoreUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize secure store: %w", err)
	}

	return clearStore(ctx, store, logger, writer, confirmed)
}

// clearStore holds the command logic with injected dependencies.
func clearStore(
	ctx context.Context,
	store storeUseCase.SecureStoreUseCase,
	logger *slog.Logger,
	writer io.Writer,
	confirmed bool,
) error {
	if !confirmed {
		return fmt.Errorf("refusing to erase the store without --yes")
	}

	if err := store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}

	logger.Info("store cleared")
	_, _ = fmt.Fprintln(writer, "All records erased.")
	return nil
}
