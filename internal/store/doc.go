// Package store provides SQLite-backed durable storage for items.
//
// Items are stored one row per key, with the body serialized as canonical
// JSON so that byte-level comparison of stored bodies is meaningful. The
// store never hard-deletes on Delete: deletion stamps the item's deleted
// event and keeps the row, so soft-deleted items stay visible to queries
// that want them.
//
// Query evaluation happens in memory: rows are scanned in a deterministic
// order (key text, binary collation), each decoded item is run through the
// matcher, and orderBy/offset/limit are applied to the survivors.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
