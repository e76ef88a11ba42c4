// Package query implements the catalogue browse state: search term, tag
// filters, rating threshold, sort key, and page number.
//
// [Query] enforces the browse invariants (tag set semantics and the reset of
// the page number on every non-page mutation) while [Query.Encode] and
// [Parse] keep the state round-trippable through a shareable URL query string
// with default values omitted.
//
// [Controller] drives catalogue fetches from the current state. Requests carry
// a monotonically increasing sequence number and only the response matching
// the latest issued request is applied, so a slow stale response never
// overwrites newer results. The Issue/Apply split lets the TUI run the network
// call off the update loop and feed the outcome back as a message; Fetch is
// the synchronous convenience used by the CLI.
package query
