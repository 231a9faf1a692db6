package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinemania/internal/repositories"
	"github.com/desertthunder/cinemania/internal/services"
	"github.com/desertthunder/cinemania/internal/shared"
	"github.com/desertthunder/cinemania/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/cinemania-tui.log"

// TUI launches the interactive library view.
//
// When stdout is not a terminal it prints the library list instead.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		r.logger.Debug("stdout is not a terminal, printing library list")
		return r.LibraryList(ctx, cmd)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, err := r.database()
	if err != nil {
		return err
	}
	loader, err := r.loader()
	if err != nil {
		return err
	}
	catalog, err := r.movieCatalog()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := services.NewSessionWatcher(
		repositories.NewSessionRepository(db),
		r.config.Session.PollInterval.Duration,
		fileLogger,
	)
	watcher.Start(ctx)
	defer watcher.Stop()

	model := ui.NewModel(ctx, ui.Options{
		Sessions: watcher,
		Loader:   loader,
		Catalog:  catalog,
		Logger:   fileLogger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
