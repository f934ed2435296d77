// Package cli provides the interactive bookshelf command-line client.
//
// It wires configuration, the token store, the authenticated API client and
// the services, then runs a REPL. Typical flow: login, browse or search the
// catalogue, upload and rate books, ask questions about a book.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
