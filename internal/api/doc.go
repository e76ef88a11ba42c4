// Package api implements the HTTP client for the manga catalogue REST service.
//
// # Endpoints
//
// All paths are rooted at <base_url>/api and exchange JSON bodies:
//
//	POST /auth/token          credential exchange for a bearer token
//	POST /users/register      account creation
//	GET  /users/me            identity resolution (bearer)
//	GET  /manga               catalogue search with skip/limit paging
//	GET  /manga/{id}          single catalogue entry
//	GET  /manga/{id}/reviews  reviews for an entry
//	POST /manga/{id}/reviews  post a review (bearer)
//	GET  /manga/tags          all known tags
//	GET  /library             the user's library (bearer)
//	POST /library             add an entry (bearer)
//	PUT  /library/{id}        update an entry's status (bearer)
//	DELETE /library/{id}      remove an entry (bearer)
//
// # Authentication
//
// The client never owns the bearer token. A [TokenSource] is consulted at
// request time, so the session layer remains the only writer of the persisted
// token while every outgoing request reads the current value.
//
// # Error Handling
//
// Non-2xx responses are decoded from the service's {"detail": "..."} error
// envelope into [*Error], which callers unwrap for the human-readable detail.
// Transport failures are wrapped with [shared.ErrAPIRequest].
package api
