// Package cli provides the interactive tracker command-line client.
//
// It wires configuration, the REST client, a small local state database and
// an interactive REPL. The session token and the selected project are kept
// between runs, so a restarted client continues where it stopped.
//
// Key features:
//   - Register / Login / Logout
//   - List, create and select projects; invite members by email
//   - Show the board of the selected project (backlog or a sprint) and move
//     issues between columns; failed moves are rolled back and reported
//   - Show and create issues, project statistics, attachments
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
