// The Movie Database (TMDB) implementation of [MovieCatalog]
//
// Response shapes follow https://developer.themoviedb.org/reference/movie-details
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemania/internal/models"
	"github.com/desertthunder/cinemania/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

var _ MovieCatalog = (*TMDBService)(nil)

// TMDBService fetches movie details from TMDB.
//
// A configured access token is sent as a bearer token through an [oauth2.StaticTokenSource];
// otherwise the v3 api_key query parameter is used.
type TMDBService struct {
	baseURL    string
	language   string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewTMDBService creates a TMDB client from cfg. client may be nil to use [http.DefaultClient].
func NewTMDBService(cfg shared.TMDBConfig, client *http.Client, logger *log.Logger) (*TMDBService, error) {
	if !cfg.HasCredentials() {
		return nil, fmt.Errorf("%w: tmdb access_token or api_key", shared.ErrMissingCredentials)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = tmdbBaseURL
	}

	svc := &TMDBService{
		baseURL:    baseURL,
		language:   cfg.Language,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		logger:     logger.With("service", "tmdb"),
	}

	if cfg.RateLimit > 0 {
		svc.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	if cfg.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		svc.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken}))
	} else {
		svc.apiKey = cfg.APIKey
	}

	return svc, nil
}

// FetchMovieDetails implements [MovieCatalog]. Failures are logged and reported as nil.
func (s *TMDBService) FetchMovieDetails(ctx context.Context, id models.MovieID) *models.Movie {
	movie, err := s.Movie(ctx, id)
	if err != nil {
		s.logger.Debug("movie fetch failed", "id", id, "error", err)
		return nil
	}
	return movie
}

// Movie fetches and decodes the details of a single movie.
func (s *TMDBService) Movie(ctx context.Context, id models.MovieID) (*models.Movie, error) {
	payload, err := s.MovieJSON(ctx, id)
	if err != nil {
		return nil, err
	}
	return DecodeMovie(id, payload)
}

// MovieJSON returns the raw movie details payload for id.
func (s *TMDBService) MovieJSON(ctx context.Context, id models.MovieID) ([]byte, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("%w: movie id is required", shared.ErrInvalidArgument)
	}
	return s.doRequest(ctx, "/movie/"+url.PathEscape(id.String()))
}

// doRequest performs a rate limited GET against the TMDB API and returns the response body.
func (s *TMDBService) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	if s.language != "" {
		params.Set("language", s.language)
	}
	if s.apiKey != "" {
		params.Set("api_key", s.apiKey)
	}

	apiURL := s.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", shared.ErrMovieNotFound, endpoint)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: tmdb status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: tmdb status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return body, nil
}

// DecodeMovie decodes a movie details payload. When the payload carries no id, id is used.
func DecodeMovie(id models.MovieID, payload []byte) (*models.Movie, error) {
	var movie models.Movie
	if err := json.Unmarshal(payload, &movie); err != nil {
		return nil, fmt.Errorf("%w: malformed movie payload: %v", shared.ErrAPIRequest, err)
	}
	if movie.ID.IsZero() {
		movie.ID = id
	}
	return &movie, nil
}
