// Package cli provides the interactive HireNest command-line client.
//
// It wires configuration, the local SQLite store, the API client and the
// services into a REPL. Typical flow: restore the session from the refresh
// cookie, log in or finish a multi-step flow (OTP, role selection, password
// reset), then run role-specific commands while a background watcher turns
// verification changes into notifications.
//
// Commands are gated by role: employers get status/submit/verify-code,
// administrators get pending/all/review. A command the current role may
// not use prints the help text. Watcher baselines and the notification
// history belong to the signed-in account; another account starts clean.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and setWatch for details.
package cli
