// Package repositories implements SQLite persistence for cinemania.
//
// Key Implementations:
//   - [UserRepository] : User account persistence with email-based lookups
//   - [LibraryRepository] : Saved movies per user, in the order they were added
//   - [SessionRepository] : The single active session that drives library reloads
//   - [MovieCacheRepository] : Raw movie detail payloads keyed by movie id
//
// Users and library entries support soft deletes via deleted_at timestamps and exclude deleted records by default.
// Sequence numbers provide stable ordering independent of UUIDs and creation timestamps;
// [NextSequence] atomically increments per-table counters in dedicated sequence tables.
package repositories
