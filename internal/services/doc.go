// Package services defines the collaborators the library view depends on and implements them.
//
// # Interfaces
//
//   - [LibrarySource] : saved movie ids for a session
//   - [MovieCatalog] : movie details by id; nil on failure, never an error
//   - [SessionProvider] : sign-in/sign-out notifications
//
// # Implementations
//
// [TMDBService] fetches movie details from The Movie Database. A v4 read access token is attached through
// an [oauth2.StaticTokenSource]; a v3 api_key is sent as a query parameter instead when no token is configured.
// Requests go through a [rate.Limiter].
//
// [CachedCatalog] decorates a [MovieSource] with a persistent payload cache (see repositories.MovieCacheRepository).
//
// [UserLibrary] adapts the library repository to [LibrarySource].
//
// [SessionWatcher] polls the session store so a running TUI notices `auth login` and `auth logout` from other processes.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : neither access token nor api key configured
//   - [shared.ErrMovieNotFound] : TMDB returned 404
//   - [shared.ErrServiceUnavailable] : TMDB returned 503
//   - [shared.ErrAPIRequest] : transport failure, other non-2xx status, or a malformed payload
package services
