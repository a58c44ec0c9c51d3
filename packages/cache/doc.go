// Package cache stores raw macro results with an expiration instant.
//
// Entries are keyed by a SHA-256 over the pair (source file identity, macro
// identity), so keys stay valid across builds and versions. Two durable
// stores are provided:
//   - FileStore: one file per key, first line the expiry as epoch seconds,
//     the rest the cached value
//   - SQLiteStore: a single sqlite database with one row per key
//
// Reads fail closed: a missing, expired, unreadable or corrupted entry is a
// miss, never an error for the caller.
package cache
