// Package cli provides the interactive clouddemo dashboard.
//
// It wires configuration, the local session database, the backend adapters
// and the panels, then runs a REPL over them. Signed out, the dashboard shows
// the feature overview and the auth form; signed in, it mounts the notes,
// chat, storage and function panels for the current user and unmounts them
// again on sign-out.
//
// A background watcher polls the backend's health endpoint and flips the
// prompt between online and offline.
//
// The cobra command tree (NewRootCommand) adds one-shot subcommands for
// applying the backend schema, probing health and invoking a function.
package cli
