// Package localcache stores the editor's last-known table snapshot in a named
// slot that survives restarts.
//
// Two durable backends exist: one JSON file per slot guarded by a flock, or a
// single bbolt database with one key per slot. A memory backend serves tests.
// Backends store opaque bytes; interpretation belongs to the rows package.
package localcache
