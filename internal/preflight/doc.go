// Package preflight provides readiness checks for the paths and services
// mangaeditor depends on.
//
// The CLI "mangaeditor doctor" command runs RunAll and renders the results.
// Checks never fail hard; each reports a pass flag and a detail line.
package preflight
