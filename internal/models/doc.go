// Package models defines domain entities and persistence interfaces for cinemania.
//
// The package contains two categories of types:
//
// 1. Catalog records: read-only data supplied by the movie database
//   - [Movie] : Movie details including its [Genre] list
//   - [MovieID] : Opaque identifier accepted as a JSON string or number
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [User] : Library owners
//   - [LibraryEntry] : A movie saved to a user's library, ordered by sequence
//   - [Session] : The signed-in user context that drives library reloads
//
// Catalog records come from an untrusted source. Decoding a [Movie] never fails because of its genres:
// a missing, non-array or malformed genres field leaves the movie with an empty genre set.
package models
