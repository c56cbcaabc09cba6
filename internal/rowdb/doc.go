// Package rowdb persists rows in a relational store: sqlite through
// modernc.org/sqlite by default, or PostgreSQL through lib/pq.
//
// The store exposes exactly two data operations, List and Create, plus Ping
// for health checks. Every data failure is returned as a *StoreError that
// matches ErrStoreUnavailable.
package rowdb
