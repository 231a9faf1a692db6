package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/cinemania/internal/repositories"
	"github.com/desertthunder/cinemania/internal/server"
	"github.com/desertthunder/cinemania/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve serves the library page until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = int(port)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	loader, err := r.loader()
	if err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "addr", cfg.Addr())
	handler := server.NewLibraryHandler(loader, repositories.NewSessionRepository(db), logger)
	srv := server.New(cfg.Addr(), server.NewLibraryRouter(handler, logger), logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := fmt.Sprintf("http://%s/library", cfg.Addr())
	r.writePlain("Serving your library at %s\n", url)
	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	return srv.ListenAndServe(ctx)
}
