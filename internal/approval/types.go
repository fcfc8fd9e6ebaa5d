package approval

// Metadata describes the action awaiting approval. It is echoed through
// the acknowledgement endpoints and handed back on OnApproved.
type Metadata struct {
	Action      string            `json:"action"`
	ReceiptID   string            `json:"receiptId"`
	ReferenceID string            `json:"referenceId"`
	Timestamp   string            `json:"timestamp"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Callbacks receive the outcome of one approval flow. Either OnApproved
// or OnError fires, never both. Nil callbacks are skipped.
type Callbacks struct {
	OnApproved func(Metadata)
	OnError    func(error)
}
