// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for exploring the song library:
//  1. [QueryView] : Enter a title query
//  2. [ResultListView] : Browse matching songs (local and backfilled)
//  3. [DetailView] : Inspect a single song
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Searches run through the same reconciler the HTTP API uses, so browsing a
// sparse title from the TUI backfills the library exactly as a web search would.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
