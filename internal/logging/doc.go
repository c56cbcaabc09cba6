// Package logging assembles the slog loggers used by the editor session, the
// row service, and the CLI.
//
// Console output goes through a tint handler (colour only when stderr is a
// terminal); JSON output uses the standard slog JSON handler with short keys.
// File outputs are always written as JSON and are teed next to the console
// handler. Attribute helpers and the shared field keys live in attrs.go and
// context.go.
package logging
