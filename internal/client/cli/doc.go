// Package cli provides the interactive userauth command-line client.
//
// It wires configuration, the HTTP API client and a REPL. A background
// watcher probes the server's health endpoint and shows whether the client
// is online.
//
// Commands: register, login, profile, refresh, logout, help, exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
