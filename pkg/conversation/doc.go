// Package conversation owns session lifecycle and the bounded memory of
// recent conversations.
//
// The Store keeps conversations in an LRU+TTL-bounded map. Every Create and
// Append runs an eviction sweep: conversations untouched for longer than the
// TTL are dropped first, then least-recently-used conversations are dropped
// while the store is over capacity. Create, Append, and GetContext touch
// recency; passive existence does not. Eviction is silent.
//
// An optional Archiver (see BadgerArchive) receives evicted conversations so
// expired sessions remain auditable; archive failures are logged and never
// surface to callers.
package conversation
