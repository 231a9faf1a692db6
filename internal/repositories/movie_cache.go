package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/shared"
)

// MovieCacheRepository stores raw movie detail payloads so repeated loads skip the network.
//
// Payloads are kept as fetched; decoding (and its tolerance for bad genre data) happens on read.
type MovieCacheRepository struct {
	db *sql.DB
}

// NewMovieCacheRepository creates a new [MovieCacheRepository] with the given database connection
func NewMovieCacheRepository(db *sql.DB) *MovieCacheRepository {
	return &MovieCacheRepository{db: db}
}

// Get returns the cached payload for id and when it was fetched.
func (r *MovieCacheRepository) Get(id models.MovieID) ([]byte, time.Time, error) {
	var (
		payload   string
		fetchedAt time.Time
	)

	err := r.db.QueryRow(`SELECT payload, fetched_at FROM movie_cache WHERE movie_id = ?`, id.String()).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("%w: %s not cached", shared.ErrMovieNotFound, id)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query movie cache: %w", err)
	}
	return []byte(payload), fetchedAt, nil
}

// Put stores payload for id, replacing any previous value.
func (r *MovieCacheRepository) Put(id models.MovieID, payload []byte) error {
	query := `
		INSERT INTO movie_cache (movie_id, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(movie_id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`
	if _, err := r.db.Exec(query, id.String(), string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to cache movie %s: %w", id, err)
	}
	return nil
}

// Purge removes payloads fetched before cutoff and returns how many were removed.
func (r *MovieCacheRepository) Purge(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM movie_cache WHERE fetched_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge movie cache: %w", err)
	}
	return result.RowsAffected()
}
