// Package web builds the static site that hosts the catalog and library pages.
//
// # Pages
//
// A build reads a named list of HTML pages relative to the site root (by default main, catalog and
// library) and writes them to the output directory under the same relative paths.
//
// # Partials
//
// Every <load src="path"/> tag in a page is replaced with the contents of the file at path, resolved
// relative to the page's own directory. Inlined partials are not scanned again, so a partial cannot
// load another partial. A missing partial fails the build with [shared.ErrPartialNotFound].
//
// # Manifest
//
// The build records the public base path and every page it wrote in manifest.json at the root of
// the output directory.
//
// [Scaffold] writes a starter site with the three default pages and their shared partials.
package web
