package state

import (
	"time"

	"github.com/basepi/basereceipt/internal/config"
	"github.com/basepi/basereceipt/internal/receipt"
)

// Storage keys. The whole application state is serialized under StateKey;
// SyncTimestampKey records the last persist time for diagnostics; DomainKey
// holds a copy of the deployment identity for the binding check.
const (
	StateKey         = "base-receipt:state"
	SyncTimestampKey = "base-receipt:sync-timestamp"
	DomainKey        = "base-receipt:domain"
)

// AppState is the single piece of state the manager owns.
type AppState struct {
	// Receipt is the active record, nil when none has been created or
	// after a reset.
	Receipt *receipt.Record `json:"receipt"`

	// IsProcessing is true while a transition is in flight.
	IsProcessing bool `json:"isProcessing"`

	// LastUpdated is stamped on every mutation and is the sole
	// conflict-resolution key across tabs.
	LastUpdated time.Time `json:"lastUpdated"`

	// Domain is the static deployment identity. It is carried in the
	// serialized state but never accepted from another tab.
	Domain config.DomainConfig `json:"domain"`
}

// clone returns a deep copy so callers can never reach the manager's
// internal value through a returned snapshot.
func (s AppState) clone() AppState {
	out := s
	if s.Receipt != nil {
		rec := s.Receipt.Clone()
		out.Receipt = &rec
	}
	return out
}

// Patch is a partial state update for Manager.Apply. Nil fields leave
// the current value unchanged.
type Patch struct {
	// Receipt replaces the active record when non-nil.
	Receipt *receipt.Record

	// ClearReceipt removes the active record. Takes precedence over
	// Receipt.
	ClearReceipt bool

	// IsProcessing sets the in-flight flag when non-nil.
	IsProcessing *bool
}

// Bool is a convenience for Patch.IsProcessing literals.
func Bool(v bool) *bool {
	return &v
}
