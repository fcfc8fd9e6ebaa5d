// Package state implements the Base Receipt application state manager:
// the single source of truth for the active receipt within one tab,
// durable across reloads, synchronized across tabs of the same origin.
//
// ARCHITECTURE:
//
// One Manager per tab. All mutations flow through Apply, which merges a
// partial update, stamps lastUpdated, persists the whole state under one
// durable key, notifies local subscribers, and broadcasts a storage
// event for other tabs. Methods execute synchronously and never suspend.
//
// Cross-tab conflict resolution is last-writer-wins keyed purely on the
// lastUpdated wall-clock timestamp: an incoming state strictly newer
// than the local one replaces it wholesale (except the static domain
// identity, which is never taken from another tab); anything else is
// discarded. Two tabs writing within the same wall-clock instant can
// silently drop one update, and unsynchronized clocks can misorder
// writes. This is accepted behavior, not remediated - there is no
// multi-writer merge.
//
// Persistence failures degrade the tab to in-memory-only operation:
// state keeps working locally, reload durability and cross-tab sync are
// lost, and the condition is logged. They never crash the tab.
package state
