// Package syncctl reconciles a session's row store against the row service
// once at startup.
//
// Controller issues exactly one list call in the background and moves through
// Idle, Loading and then Ready or ReadyStale. A failed fetch leaves the row
// store untouched; nothing is retried. Edits are never blocked while the fetch
// is in flight. The configured policy decides whether a fetched snapshot
// overwrites edits made during the fetch ("replace") or yields to them
// ("preserve-edits").
package syncctl
