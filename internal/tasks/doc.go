// Package tasks runs background jobs over the movie catalog with real-time progress reporting.
//
// # Cache Warming
//
// [CacheWarmer.Warm] fetches the details of many movies through a [services.MovieCatalog] using a
// fixed pool of workers fed from a rate-limited job queue. When the catalog is the cached catalog,
// every successful fetch leaves a fresh entry in the local cache, so the next library load needs no
// network round trips.
//
// A movie that cannot be fetched is recorded in [WarmResult.Failed] and never stops the job.
//
// # Progress Reporting
//
// Progress uses the same [library.ProgressUpdate] values as library loads, sent with select and
// default so a slow reader never blocks the workers.
package tasks
