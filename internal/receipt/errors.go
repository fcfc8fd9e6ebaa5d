package receipt

import (
	"errors"
	"fmt"
)

// TransitionError reports a lifecycle operation invoked on a record whose
// status does not admit it. These are programmer contract violations, not
// runtime conditions: the engine fails fast rather than silently coercing
// the record into an inconsistent shape.
type TransitionError struct {
	// Code identifies the violation category.
	Code TransitionErrorCode

	// Message is a human-readable description.
	Message string

	// ReceiptID identifies the affected record, if known.
	ReceiptID string

	// From is the record's status at the time of the call.
	From Status

	// To is the requested status, when the operation names one.
	To Status
}

// TransitionErrorCode categorizes transition errors.
type TransitionErrorCode string

const (
	// ErrCodeInvalidTransition indicates a status edge outside the
	// lifecycle state machine.
	ErrCodeInvalidTransition TransitionErrorCode = "INVALID_TRANSITION"

	// ErrCodeNotApproved indicates Finalize called on a record that has
	// not reached the approved status.
	ErrCodeNotApproved TransitionErrorCode = "NOT_APPROVED"

	// ErrCodeTerminalStatus indicates an operation on a record already in
	// a terminal state (submitted or failed).
	ErrCodeTerminalStatus TransitionErrorCode = "TERMINAL_STATUS"

	// ErrCodeInvalidStatus indicates a status value outside the four
	// lifecycle states.
	ErrCodeInvalidStatus TransitionErrorCode = "INVALID_STATUS"
)

// Error implements the error interface.
func (e *TransitionError) Error() string {
	if e.To != "" {
		return fmt.Sprintf("%s: %s (receipt=%s, %s -> %s)", e.Code, e.Message, e.ReceiptID, e.From, e.To)
	}
	return fmt.Sprintf("%s: %s (receipt=%s, status=%s)", e.Code, e.Message, e.ReceiptID, e.From)
}

// IsTransitionError reports whether err is (or wraps) a TransitionError.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// IsTerminalStatusError reports whether err is a TransitionError caused by
// operating on a record in a terminal state.
func IsTerminalStatusError(err error) bool {
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Code == ErrCodeTerminalStatus
	}
	return false
}
