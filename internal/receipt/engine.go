package receipt

import (
	"fmt"
	"time"
)

// Engine produces and transforms receipt records.
//
// All operations are pure with respect to their Record inputs: the input
// is never mutated and the returned Record shares no log slice or
// manifest map with it. The only non-determinism is identifier randomness
// and the clock, both injectable.
type Engine struct {
	clock Clock
	ids   IDGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock. Tests use a fixed clock so log
// entries and golden files are byte-stable.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// NewEngine creates an engine with the system clock and random identifiers
// unless overridden by options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock: SystemClock{},
		ids:   RandomGenerator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create constructs a new record in the created status.
//
// It assigns both identifiers, stamps the creation time, and seeds the
// activity log with three entries: the creation notice and one entry per
// identifier. The manifest records the deployment app ID, the action,
// the creation time, the initiating user, and the release version.
func (e *Engine) Create(username string, action ActionConfig, appID string) Record {
	now := e.clock.Now()
	ts := stamp(now)
	receiptID := e.ids.ReceiptID(now)
	referenceID := e.ids.ReferenceID(now)

	return Record{
		ReceiptID:   receiptID,
		ReferenceID: referenceID,
		Status:      StatusCreated,
		Timestamp:   ts,
		Username:    username,
		Action:      action.Name,
		ReleaseTag:  ReleaseTag,
		APILog: []string{
			logEntry(ts, "Receipt created - "+ReleaseTag),
			logEntry(ts, "Receipt ID: "+receiptID),
			logEntry(ts, "Reference ID: "+referenceID),
		},
		Manifest: map[string]string{
			"appId":          appID,
			"action":         action.Name,
			"timestamp":      ts,
			"piUser":         username,
			"releaseVersion": AppVersion,
		},
	}
}

// UpdateStatus returns a copy of rec with its status replaced and one log
// entry appended: logMessage if non-empty, otherwise a default notice.
//
// Only the created -> approved edge is reachable here. Entering submitted
// requires Finalize (which assigns the freeze ID) and entering failed
// requires Fail (which appends the failure entries); routing those
// statuses through UpdateStatus would break the lifecycle invariants, so
// the engine rejects them loudly.
func (e *Engine) UpdateStatus(rec Record, status Status, logMessage string) (Record, error) {
	if !status.Valid() {
		return Record{}, &TransitionError{
			Code:      ErrCodeInvalidStatus,
			Message:   fmt.Sprintf("unknown status %q", status),
			ReceiptID: rec.ReceiptID,
			From:      rec.Status,
		}
	}
	if rec.Status.Terminal() {
		return Record{}, &TransitionError{
			Code:      ErrCodeTerminalStatus,
			Message:   "record is in a terminal state",
			ReceiptID: rec.ReceiptID,
			From:      rec.Status,
			To:        status,
		}
	}
	if rec.Status != StatusCreated || status != StatusApproved {
		return Record{}, &TransitionError{
			Code:      ErrCodeInvalidTransition,
			Message:   "status edge is not part of the receipt lifecycle",
			ReceiptID: rec.ReceiptID,
			From:      rec.Status,
			To:        status,
		}
	}

	ts := stamp(e.clock.Now())
	msg := logMessage
	if msg == "" {
		msg = "Status changed to: " + string(status)
	}

	out := rec.Clone()
	out.Status = status
	out.APILog = append(out.APILog, logEntry(ts, msg))
	return out, nil
}

// Finalize transitions an approved record to submitted.
//
// It assigns the freeze ID, appends three log entries (freeze ID, freeze
// tag, submission confirmation), and adds the freeze tag to the manifest.
// Calling Finalize on a record in any other status is a contract
// violation and returns a TransitionError; the record is never silently
// overwritten.
func (e *Engine) Finalize(rec Record) (Record, error) {
	if rec.Status != StatusApproved {
		code := ErrCodeNotApproved
		if rec.Status.Terminal() {
			code = ErrCodeTerminalStatus
		}
		return Record{}, &TransitionError{
			Code:      code,
			Message:   "finalize requires the approved status",
			ReceiptID: rec.ReceiptID,
			From:      rec.Status,
			To:        StatusSubmitted,
		}
	}

	now := e.clock.Now()
	ts := stamp(now)
	freezeID := e.ids.FreezeID(now)

	out := rec.Clone()
	out.Status = StatusSubmitted
	out.FreezeID = &freezeID
	out.APILog = append(out.APILog,
		logEntry(ts, "Freeze ID generated: "+freezeID),
		logEntry(ts, "Freeze Tag: "+FreezeTag),
		logEntry(ts, "Receipt record submitted (approval only)"),
	)
	out.Manifest["freezeTag"] = FreezeTag
	return out, nil
}

// Fail transitions a non-terminal record to failed, appending the error
// message and a generic failure notice (two entries).
//
// Failing an already-terminal record is rejected: a submitted record is
// immutable history and a failed record gains nothing from failing again.
func (e *Engine) Fail(rec Record, message string) (Record, error) {
	if rec.Status.Terminal() {
		return Record{}, &TransitionError{
			Code:      ErrCodeTerminalStatus,
			Message:   "record is in a terminal state",
			ReceiptID: rec.ReceiptID,
			From:      rec.Status,
			To:        StatusFailed,
		}
	}

	ts := stamp(e.clock.Now())

	out := rec.Clone()
	out.Status = StatusFailed
	out.APILog = append(out.APILog,
		logEntry(ts, "ERROR: "+message),
		logEntry(ts, "Receipt creation failed"),
	)
	return out, nil
}

// stamp formats a timestamp for record fields and log entries.
func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func logEntry(ts, msg string) string {
	return fmt.Sprintf("[%s] %s", ts, msg)
}
