// Package client contains the client-side building blocks for the HireNest
// job board.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     authentication, password recovery, employer verification and the
//     admin review queue.
//  2. A REST implementation (see HTTPClient) that attaches the bearer token,
//     keeps the refresh cookie in a cookie jar, bounds every request with a
//     timeout and unwraps the optional {"data": ...} response envelope.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations),
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Every failure is an *Error carrying a Kind. Common conditions match the
// sentinel errors with errors.Is: ErrValidation, ErrUnauthorized,
// ErrForbidden, ErrNotFound, ErrUnavailable. Message returns the text that
// is safe to show to the user.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation in addition to the configured
// per-request timeout.
//
// See Also
//
//   - Interface:  Client
//   - REST impl:  HTTPClient
//   - DB helpers: InitDatabase, RunMigrations
package client
