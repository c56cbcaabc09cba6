// Package api serves the row service over HTTP.
//
// # Routes
//
// GET /rows lists every stored row ordered by id, using storage field names
// (media_path, text, translation; NULL columns encode as null).
//
// POST /rows stores {mediaPath, text, translation} as given and answers
// {id}. Absent fields are stored as NULL.
//
// GET /health reports {status, driver} after pinging the store.
//
// # Errors
//
// Store failures answer 500 with {error} carrying the driver message.
// Undecodable or oversized bodies answer 400 and other methods 405, both with
// the same {error} shape.
//
// # Design Notes
//
// Every response allows any origin and OPTIONS preflights answer 204. Each
// request gets an X-Request-Id (generated when absent) that is echoed back
// and attached to log lines.
package api
