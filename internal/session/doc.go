// Package session owns the authentication lifecycle for the mbx client.
//
// The [Manager] is the single source of truth for "who is the current user",
// backed by one piece of persisted state: the bearer token, kept in a
// [TokenStore]. The manager is constructed in main and passed to whatever
// needs it; there is no package-level singleton.
//
// Ordering is strict: a login exchanges credentials for a token, persists it,
// then resolves the identity. Identity resolution never proceeds on a failed
// token exchange, and a failed resolution always clears the persisted token so
// no stale token or stale identity survives an operation.
//
// Login and Register never return errors. Failures are folded into a [Result]
// carrying the server's error detail when one was reported, so callers render
// a message instead of handling error values. Initialize degrades to
// unauthenticated on any failure.
package session
