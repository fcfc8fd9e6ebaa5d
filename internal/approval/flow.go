package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Flow handles the wallet events of one approval attempt and settles it
// through exactly one of the caller's callbacks.
//
// Thread-safety: the wallet may fire events from any goroutine; the
// settle-once guard is protected by a mutex. After the first terminal
// callback every later event is logged and dropped.
type Flow struct {
	client    *Client
	meta      Metadata
	callbacks Callbacks
	logger    *slog.Logger

	mu      sync.Mutex
	settled bool
}

// NewFlow creates a flow for one approval attempt.
func NewFlow(client *Client, meta Metadata, cb Callbacks, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		client:    client,
		meta:      meta,
		callbacks: cb,
		logger:    logger,
	}
}

// HandleApprovalReady processes the wallet's "approval ready" event: the
// approve endpoint is acknowledged first, then OnApproved fires. An
// acknowledgement failure (rejection or unreachable endpoint) settles
// the flow through OnError instead.
func (f *Flow) HandleApprovalReady(ctx context.Context, paymentID string) {
	f.logger.Debug("approval ready", "payment_id", paymentID)

	if _, err := f.client.Approve(ctx, paymentID, f.meta); err != nil {
		f.settleError(fmt.Errorf("backend approval failed: %w", err))
		return
	}
	f.settleApproved()
}

// HandleCompletionReady processes the wallet's "completion ready" event.
// The complete endpoint is acknowledged; failures are informational only
// and never settle the flow, because approval has already been granted.
func (f *Flow) HandleCompletionReady(ctx context.Context, paymentID, txid string) {
	f.logger.Debug("completion ready", "payment_id", paymentID, "txid", txid)

	if _, err := f.client.Complete(ctx, paymentID, txid, f.meta); err != nil {
		f.logger.Warn("backend completion failed", "payment_id", paymentID, "error", err)
	}
}

// HandleCancel processes the wallet's cancellation event.
func (f *Flow) HandleCancel(paymentID string) {
	f.logger.Debug("approval cancelled", "payment_id", paymentID)
	f.settleError(errors.New("approval cancelled by user"))
}

// HandleError processes a wallet-reported error.
func (f *Flow) HandleError(err error) {
	f.settleError(err)
}

// Settled reports whether a terminal callback has fired.
func (f *Flow) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// settle marks the flow settled. Returns false if it already was.
func (f *Flow) settle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settled {
		return false
	}
	f.settled = true
	return true
}

func (f *Flow) settleApproved() {
	if !f.settle() {
		f.logger.Warn("dropping approval event on settled flow", "receipt_id", f.meta.ReceiptID)
		return
	}
	if f.callbacks.OnApproved != nil {
		f.callbacks.OnApproved(f.meta)
	}
}

func (f *Flow) settleError(err error) {
	if !f.settle() {
		f.logger.Warn("dropping error event on settled flow",
			"receipt_id", f.meta.ReceiptID, "error", err)
		return
	}
	if f.callbacks.OnError != nil {
		f.callbacks.OnError(err)
	}
}
