package receipt

// Version and release configuration.
const (
	// AppVersion is the Base Receipt release version recorded in manifests.
	AppVersion = "1.0.0"

	// ReleaseTag marks every created receipt with the release it came from.
	ReleaseTag = "RELEASE-" + AppVersion + "-FINAL"

	// FreezeTag is added to the manifest when a receipt is finalized.
	FreezeTag = "FREEZE-" + AppVersion
)

// Status is the lifecycle state of a receipt record.
type Status string

const (
	// StatusCreated is the initial state after Create.
	StatusCreated Status = "created"

	// StatusApproved means the external approval event arrived.
	StatusApproved Status = "approved"

	// StatusSubmitted is the terminal success state, reached via Finalize.
	StatusSubmitted Status = "submitted"

	// StatusFailed is the terminal error state, reached via Fail.
	StatusFailed Status = "failed"
)

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusApproved, StatusSubmitted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSubmitted || s == StatusFailed
}

// ActionConfig describes the user action a receipt tracks.
type ActionConfig struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	RequiresApproval bool   `json:"requiresApproval"`
}

// Record is one tracked user action and its approval/finalization status.
//
// Records are plain values. Engine operations never mutate their input;
// they return a fresh Record with copied log and manifest.
type Record struct {
	// ReceiptID is the internal identifier, assigned once at Create.
	ReceiptID string `json:"receiptId"`

	// ReferenceID is the external-facing cross-reference, assigned once
	// at Create alongside ReceiptID. The two are always distinct.
	ReferenceID string `json:"referenceId"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// Timestamp is the creation time in RFC 3339, immutable.
	Timestamp string `json:"timestamp"`

	// Username identifies who initiated the action.
	Username string `json:"username"`

	// Action is the descriptive label of the tracked action.
	Action string `json:"action"`

	// FreezeID is assigned by Finalize and absent until then.
	// Present iff Status is StatusSubmitted.
	FreezeID *string `json:"freezeId,omitempty"`

	// ReleaseTag is set at Create and never mutated.
	ReleaseTag string `json:"releaseTag,omitempty"`

	// APILog is the append-only activity log. Entries are formatted
	// "[<RFC 3339>] <message>" and are never reordered or truncated.
	APILog []string `json:"apiLog"`

	// Manifest holds descriptive metadata. Keys are only ever added.
	Manifest map[string]string `json:"manifest"`
}

// Finalized reports whether the record carries a freeze ID.
func (r Record) Finalized() bool {
	return r.FreezeID != nil && *r.FreezeID != ""
}

// Clone returns a deep copy of the record. The engine uses it so that
// returned records share no log slice or manifest map with their input.
func (r Record) Clone() Record {
	out := r
	out.APILog = make([]string, len(r.APILog), len(r.APILog)+3)
	copy(out.APILog, r.APILog)
	out.Manifest = make(map[string]string, len(r.Manifest)+1)
	for k, v := range r.Manifest {
		out.Manifest[k] = v
	}
	if r.FreezeID != nil {
		id := *r.FreezeID
		out.FreezeID = &id
	}
	return out
}
