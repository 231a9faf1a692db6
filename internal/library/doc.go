// Package library holds the "my library" view state and the load cycle that fills it.
//
// # Load Cycle
//
// [Loader.Load] asks a [services.LibrarySource] for the session's saved ids, then fetches every id
// from a [services.MovieCatalog] concurrently and waits for all of them to settle. Individual
// failures come back as nil and are dropped; the survivors keep the saved order. Only a failure
// to obtain the id list itself (or a fetch that panics) fails the whole cycle with
// [shared.ErrLibraryLoad].
//
// Each reload is tagged with a token from a [Generation]; a caller keeps the result only while its
// token is still current, so a slow load can never overwrite a newer one.
//
// # State
//
// [State] owns the loaded movies and the selected genre. The displayed list is never stored;
// [State.Displayed] derives it from the two on every call. A fresh State is built for every load.
//
// # Progress Reporting
//
// Load sends [ProgressUpdate] values on an optional channel. Sends never block: a full channel drops the update.
package library
