// Package client is the CLI's REST client for the tracker API.
//
// A Client keeps the session cookie in a cookie jar, so a successful Register
// or Login authenticates every later call. Token and SetToken expose the
// cookie value for persisting the session between runs.
//
// # Error Handling
//
// Non-2xx responses become *APIError carrying the status and the server's
// message. APIError unwraps to a sentinel (ErrUnauthorized, ErrNotFound,
// ErrBadRequest, ErrRateLimited) for errors.Is checks. Transport failures
// wrap ErrUnavailable together with the underlying cause.
package client
