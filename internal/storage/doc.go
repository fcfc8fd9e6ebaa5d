// Package storage provides the durable key/value layer and the change
// notification fan-out that back the state manager.
//
// The model mirrors a browser origin's localStorage plus its storage
// event:
//
//   - KV is a string-keyed durable store. SQLiteKV persists to a single
//     database file shared by every "tab" of the deployment; MemoryKV is
//     the degraded, in-memory-only fallback used when durable storage is
//     unavailable.
//   - Hub fans out Event values to every attached handler except the
//     writer's own, exactly as the browser delivers storage events to
//     every tab except the one that wrote. The manager never relies on
//     the hub for its own updates.
//
// Absence of a key is normal ("nothing persisted yet") and reported with
// ErrKeyNotFound, never treated as a failure.
package storage
