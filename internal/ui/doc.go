// Package ui implements the interactive "my library" page using bubbletea's Elm architecture.
//
// The page moves through a small set of views:
//  1. [WaitingView] : Waiting for the first session notification
//  2. [LoadingView] : Saved ids and movie details are being fetched
//  3. [EmptyView] : The signed-in user has no saved movies
//  4. [FailureView] : The load cycle failed; press r to retry
//  5. [LibraryView] : Hero, genre filter and the card grid
//
// Every session change starts a new load tagged with a generation number. Results and progress from
// older generations are discarded, so the latest session always wins.
//
// The hero, the genre control and the grid share one scrollable viewport. Cards and genre items are
// reachable by keyboard (arrows/hjkl, f, enter, esc) and by mouse.
package ui
