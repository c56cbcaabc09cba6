// Package main hosts the mangaeditor CLI entrypoint and command graph.
//
// "serve" runs the row service. The remaining commands either talk to that
// service through the row client ("rows list", "rows add", "doctor") or open
// an editing session against the local cache ("show", "edit", "save").
// Configuration resolution and logger setup live in the command context so
// subcommands only deal with their own flags and output.
package main
