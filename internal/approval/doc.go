// Package approval bridges the external wallet approval source and the
// receipt lifecycle.
//
// The wallet SDK is an opaque event source: for one initiated flow it
// fires, at most once each, "approval ready", "completion ready",
// "cancelled", or "error". This package owns the contract on our side:
//
//   - On approval ready, the approve endpoint MUST be acknowledged
//     before OnApproved fires; an acknowledgement failure surfaces
//     through OnError instead.
//   - Cancellation and errors surface through OnError with a
//     descriptive message.
//   - OnApproved and OnError are never both invoked for the same flow.
//
// Completion acknowledgement failures are logged but not surfaced - the
// completion event is informational once approval has been granted.
//
// No retries, no timeouts: a wallet that never fires leaves the flow
// unsettled indefinitely. That is the caller's accepted limitation.
package approval
