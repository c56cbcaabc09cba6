// Package config loads, normalizes, and validates mangaeditor configuration.
//
// It supplies defaults (service bind :5000, sqlite store under the data
// directory, the manga-editor-table-data cache slot), expands user paths
// including tilde shortcuts, reads TOML files, and honours the
// MANGAEDITOR_SERVER_URL and MANGAEDITOR_STORE_DSN environment overrides.
//
// Obtain settings through this package so the service, the editor session and
// the CLI agree on where the store and the cache live.
package config
