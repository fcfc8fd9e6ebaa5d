// Package receipt implements the Base Receipt record engine.
//
// The engine is pure: every operation takes a Record value and returns a
// new Record value. No I/O, no shared state, no hidden mutation. Callers
// that hold a reference to an earlier Record keep a valid snapshot for
// audit and display.
//
// LIFECYCLE:
//
//	created ──(approval)──> approved ──(finalize)──> submitted
//	   │                        │
//	   └────────(error)─────────┴──────> failed
//
// submitted and failed are terminal. Finalize is the only path into
// submitted because it is the only operation that assigns a freeze ID;
// the "freeze ID present iff submitted" invariant falls out of that.
//
// INVARIANTS:
//   - ReceiptID and ReferenceID are assigned exactly once, at Create.
//   - The activity log is append-only; no operation reorders or truncates it.
//   - Manifest keys are never removed; Finalize may add the freeze tag.
//
// Identifier generation and timestamps are behind the IDGenerator and
// Clock interfaces so tests (including golden-file tests) can run fully
// deterministically.
package receipt
