package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemania/internal/library"
	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/repositories"
	"github.com/desertthunder/cinemania/internal/services"
	"github.com/desertthunder/cinemania/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	ownsDB     bool
	catalog    services.MovieCatalog
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB               // Opened from Config on first use when nil
	Catalog    services.MovieCatalog // Built from the TMDB credentials on first use when nil
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// command builds the root command. Global flags take effect before any subcommand runs.
func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:    "cinemania",
		Usage:   "Browse and manage your movie library",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log debug output",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, libraryCommand, cacheCommand, tuiCommand, serveCommand, buildCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by every command.
//
// The new logger keeps the current level, so --debug also applies to it.
func (r *Runner) SetLogger(logger *log.Logger) {
	shared.SetLogLevel(logger, r.logger.GetLevel())
	r.logger = logger
}

// Close releases the database when the Runner opened it.
func (r *Runner) Close() {
	if r.db != nil && r.ownsDB {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
		r.db = nil
		r.ownsDB = false
	}
}

// database opens the configured database and runs pending migrations on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db, r.ownsDB = db, true
	return db, nil
}

// movieCatalog returns the TMDB catalog behind the sqlite detail cache.
func (r *Runner) movieCatalog() (services.MovieCatalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	tmdb, err := services.NewTMDBService(r.config.Credentials.TMDB, r.httpClient, r.logger)
	if err != nil {
		return nil, err
	}

	r.catalog = services.NewCachedCatalog(
		tmdb,
		repositories.NewMovieCacheRepository(db),
		r.config.Credentials.TMDB.CacheTTL.Duration,
		r.logger,
	)
	return r.catalog, nil
}

// loader wires the saved-id store and the movie catalog into a [library.Loader].
func (r *Runner) loader() (*library.Loader, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	catalog, err := r.movieCatalog()
	if err != nil {
		return nil, err
	}

	source := services.NewUserLibrary(repositories.NewLibraryRepository(db))
	return library.NewLoader(source, catalog, r.logger), nil
}

// requireSession returns the active session or [shared.ErrNotAuthenticated].
func (r *Runner) requireSession() (*models.Session, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}

	session, err := repositories.NewSessionRepository(db).Current()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: run 'cinemania auth login --email <email>' first", shared.ErrNotAuthenticated)
	}
	return session, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
