// Package client is the HTTP client for the userauth API used by the CLI.
//
// Transport failures are reported as ErrUnavailable; HTTP error statuses are
// mapped to the other sentinel errors in errors.go, wrapped with the server's
// message, so callers can branch with errors.Is.
package client
