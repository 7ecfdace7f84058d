// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/trustkit/cmd/app/commands"
	"github.com/allisson/trustkit/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "trustkit",
		Usage:   "Local security substrate for host applications",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations for the SQL storage backends",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					logger := newLogger()
					return commands.RunMigrations(logger, cfg.StorageBackend, cfg.DBConnectionString)
				},
			},
			{
				Name:  "rotate-key",
				Usage: "Rotate the at-rest data key if the rotation interval has elapsed",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRotateKey(ctx, os.Stdout)
				},
			},
			{
				Name:  "clear-store",
				Usage: "Irreversibly erase all records from the secure store",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Value:   false,
						Usage:   "Confirm the erasure without prompting",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunClearStore(ctx, os.Stdout, cmd.Bool("yes"))
				},
			},
			{
				Name:  "verify-export",
				Usage: "Verify the RSA signature of an exported audit log",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "export",
						Aliases:  []string{"e"},
						Required: true,
						Usage:    "Path to the signed export JSON file",
					},
					&cli.StringFlag{
						Name:     "public-key",
						Aliases:  []string{"k"},
						Required: true,
						Usage:    "Path to the signer's public key in PEM format",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunVerifyExport(
						newLogger(),
						os.Stdout,
						cmd.String("export"),
						cmd.String("public-key"),
					)
				},
			},
			{
				Name:  "gen-keeper-key",
				Usage: "Generate a local base64key keeper URI for wrapping the data key",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunGenKeeperKey(os.Stdout)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
