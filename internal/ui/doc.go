// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for catalogue browsing:
//  1. [BrowseView] : Search and page through the catalogue
//  2. [DetailView] : Inspect a single entry and its reviews
//  3. [LibraryView] : Review tracked entries grouped by reading status
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Catalogue fetches run as tea.Cmd goroutines tagged with the query controller's
// sequence number, so a stale response can never overwrite a newer page.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
