package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/cinemania/internal/formatter"
	"github.com/desertthunder/cinemania/internal/library"
	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/repositories"
	"github.com/desertthunder/cinemania/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadLibrary runs one load cycle for the signed-in user and applies genre.
func (r *Runner) loadLibrary(ctx context.Context, genre string) (*models.Session, *library.State, library.Result, error) {
	session, err := r.requireSession()
	if err != nil {
		return nil, nil, library.Result{}, err
	}

	loader, err := r.loader()
	if err != nil {
		return nil, nil, library.Result{}, err
	}

	result, err := loader.Load(ctx, session, nil)
	if err != nil {
		return nil, nil, library.Result{}, err
	}

	state := library.NewState(result.Movies)
	if genre != "" {
		state.SelectGenre(genre)
	}
	return session, state, result, nil
}

// LibraryList prints the saved movies, optionally filtered by genre.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	_, state, result, err := r.loadLibrary(ctx, cmd.String("genre"))
	if err != nil {
		return err
	}

	movies := state.Displayed()
	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	if result.Empty() {
		return r.writePlain("Your library is empty. Save a movie with 'cinemania library add <id>'.\n")
	}

	r.writePlainHeader(fmt.Sprintf("My Library · %s (%d)", state.SelectedGenre().Name, len(movies)))
	if len(movies) == 0 {
		return r.writePlain("No movies found for this genre.\n")
	}

	for i, m := range movies {
		line := fmt.Sprintf("%3d. %s", i+1, m.Title)
		if year := m.Year(); year != "" {
			line += " (" + year + ")"
		}
		line += fmt.Sprintf("  ★ %.1f", m.VoteAverage)
		if names := m.GenreNames(); len(names) > 0 {
			line += "  · " + strings.Join(names, ", ")
		}
		r.writePlain("%s  [%s]\n", line, m.ID)
	}

	if dropped := result.Dropped(); dropped > 0 {
		r.writePlainln("%d saved movie(s) could not be loaded", dropped)
	}
	return nil
}

type genreCount struct {
	library.GenreEntry
	Movies int `json:"movies"`
}

// LibraryGenres prints the genre filter entries with their movie counts.
func (r *Runner) LibraryGenres(ctx context.Context, cmd *cli.Command) error {
	_, state, _, err := r.loadLibrary(ctx, "")
	if err != nil {
		return err
	}

	genres := state.Genres()
	counts := make([]genreCount, len(genres))
	for i, g := range genres {
		counts[i] = genreCount{GenreEntry: g, Movies: len(library.Filter(state.AllMovies, g.ID))}
	}

	if cmd.Bool("json") {
		return r.writeJSON(counts, false)
	}

	r.writePlainHeader("Genres")
	for _, c := range counts {
		r.writePlain("%-8s %-20s %d\n", c.ID, c.Name, c.Movies)
	}
	return nil
}

// LibraryAdd saves a movie to the signed-in user's library.
func (r *Runner) LibraryAdd(ctx context.Context, cmd *cli.Command) error {
	id := models.ParseMovieID(cmd.StringArg("id"))
	if id.IsZero() {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}

	session, err := r.requireSession()
	if err != nil {
		return err
	}
	db, err := r.database()
	if err != nil {
		return err
	}

	title := id.String()
	if catalog, err := r.movieCatalog(); err != nil {
		r.logger.Warn("movie catalog unavailable, saving without lookup", "error", err)
	} else if movie := catalog.FetchMovieDetails(ctx, id); movie == nil {
		return fmt.Errorf("%w: %s", shared.ErrMovieNotFound, id)
	} else {
		title = movie.Title
	}

	if _, err := repositories.NewLibraryRepository(db).Add(session.UserID, id); err != nil {
		if errors.Is(err, shared.ErrAlreadySaved) {
			return r.writePlain("%s is already in your library\n", title)
		}
		return err
	}

	r.logger.Info("movie saved", "id", id, "user", session.UserID)
	return r.writePlain("✓ Saved %s\n", title)
}

// LibraryRemove removes a movie from the signed-in user's library.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	id := models.ParseMovieID(cmd.StringArg("id"))
	if id.IsZero() {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}

	session, err := r.requireSession()
	if err != nil {
		return err
	}
	db, err := r.database()
	if err != nil {
		return err
	}

	if err := repositories.NewLibraryRepository(db).Remove(session.UserID, id); err != nil {
		return err
	}

	r.logger.Info("movie removed", "id", id, "user", session.UserID)
	return r.writePlain("✓ Removed %s\n", id)
}

// LibraryExport writes the (filtered) library in the requested format.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	session, state, _, err := r.loadLibrary(ctx, cmd.String("genre"))
	if err != nil {
		return err
	}

	owner := session.Name
	if owner == "" {
		owner = session.Email
	}
	export := formatter.NewLibraryExport(owner, state)

	output := cmd.String("output")
	if output == "-" {
		data, err := formatter.Export(export, format)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	path, err := formatter.WriteExport(export, format, output)
	if err != nil {
		return err
	}

	r.logger.Info("library exported", "path", path, "format", format, "movies", len(export.Movies))
	return r.writePlain("✓ Exported %d movies to %s\n", len(export.Movies), path)
}
