package services

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemania/internal/models"
)

var _ MovieCatalog = (*CachedCatalog)(nil)

// MovieSource returns raw movie detail payloads. [TMDBService] is the production source.
type MovieSource interface {
	MovieJSON(ctx context.Context, id models.MovieID) ([]byte, error)
}

// MovieCache stores raw payloads keyed by movie id.
type MovieCache interface {
	Get(id models.MovieID) ([]byte, time.Time, error)
	Put(id models.MovieID, payload []byte) error
}

// CachedCatalog is a [MovieCatalog] that consults a [MovieCache] before its [MovieSource].
//
// Entries older than ttl are refetched; a ttl of zero never expires entries.
// Cache failures are logged and never fail a fetch.
type CachedCatalog struct {
	source MovieSource
	cache  MovieCache
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

// NewCachedCatalog wraps source with cache.
func NewCachedCatalog(source MovieSource, cache MovieCache, ttl time.Duration, logger *log.Logger) *CachedCatalog {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedCatalog{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "movie-cache"),
		now:    time.Now,
	}
}

// FetchMovieDetails implements [MovieCatalog].
func (c *CachedCatalog) FetchMovieDetails(ctx context.Context, id models.MovieID) *models.Movie {
	if movie := c.cached(id); movie != nil {
		return movie
	}

	payload, err := c.source.MovieJSON(ctx, id)
	if err != nil {
		c.logger.Debug("movie fetch failed", "id", id, "error", err)
		return nil
	}

	movie, err := DecodeMovie(id, payload)
	if err != nil {
		c.logger.Debug("movie decode failed", "id", id, "error", err)
		return nil
	}

	if err := c.cache.Put(id, payload); err != nil {
		c.logger.Warn("failed to cache movie", "id", id, "error", err)
	}
	return movie
}

func (c *CachedCatalog) cached(id models.MovieID) *models.Movie {
	payload, fetchedAt, err := c.cache.Get(id)
	if err != nil {
		return nil
	}
	if c.ttl > 0 && c.now().Sub(fetchedAt) > c.ttl {
		return nil
	}

	movie, err := DecodeMovie(id, payload)
	if err != nil {
		c.logger.Warn("discarding unreadable cache entry", "id", id, "error", err)
		return nil
	}
	return movie
}
