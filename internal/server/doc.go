// Package server serves the library page over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Library Handler
//
// [LibraryHandler] runs the same load cycle as the terminal view for every request and renders the
// hero, the genre filter and the card grid with html/template. The genre filter and card clicks are
// plain links: ?genre= selects a genre and ?featured= features a card, anchored at the hero so the
// browser scrolls back to the top.
//
// GET /library/movies returns the filtered library as JSON.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
