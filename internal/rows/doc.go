// Package rows defines the editable row model shared by the row service, the
// HTTP client and the editor session.
//
// Two wire shapes exist. Row is the editor's camelCase shape, which is what
// the local cache holds and what the table renders. Record is the storage
// shape returned by the row service (media_path, nullable text columns).
// Both are validated against JSON Schemas reflected from the Go types before
// they cross a boundary.
package rows
