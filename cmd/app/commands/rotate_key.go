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

// RunRotateKey runs the rotation check against the configured store and
// re-encrypts everything under a fresh data key when the rotation interval
// has elapsed.
func RunRotateKey(ctx context.Context, writer io.Writer) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	store, err := container.SecureStoreUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize secure store: %w", err)
	}

	return rotateKey(ctx, store, logger, writer)
}

// rotateKey holds the command logic with injected dependencies.
func rotateKey(
	ctx context.Context,
	store storeUseCase.SecureStoreUseCase,
	logger *slog.Logger,
	writer io.Writer,
) error {
	rotated, err := store.RotateKeyIfDue(ctx)
	if err != nil {
		return fmt.Errorf("failed to rotate key: %w", err)
	}

	if rotated {
		logger.Info("data key rotated")
		_, _ = fmt.Fprintln(writer, "Data key rotated; all records re-encrypted.")
	} else {
		_, _ = fmt.Fprintln(writer, "Rotation not due; data key unchanged.")
	}

	return nil
}
