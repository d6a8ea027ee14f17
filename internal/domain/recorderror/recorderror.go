// Package recorderror models per-record failures quarantined during a run:
// the RecordError itself, its retry audit trail, and the recoverable
// classification rule shared by the loader framework and every strategy's
// onRecordError callback.
package recorderror

import (
	"strings"
	"time"

	"github.com/oronts/datahub/internal/domain/record"
)

var recoverableSubstrings = []string{"timeout", "connection", "temporarily"}

// Classify reports whether message describes a transient failure: it is
// recoverable iff the message, case-insensitively, contains "timeout",
// "connection", or "temporarily".
func Classify(message string) bool {
	lower := strings.ToLower(message)
	for _, substr := range recoverableSubstrings {
		if strings.Contains(lower, substr) {
			return true
		}
	}
	return false
}

// RecordError is a quarantined record: created on a per-record failure,
// mutated by retry (which appends an ErrorAudit row), and terminated by
// unmark.
type RecordError struct {
	ErrorID     string
	RunID       string
	StepKey     string
	Message     string
	Code        string
	Recoverable bool
	Payload     record.Record
	DeadLetter  bool
	Resolved    bool
	CreatedAt   time.Time
	Audits      []ErrorAudit
}

// New constructs a RecordError with Recoverable derived from message via
// Classify.
func New(errorID, runID, stepKey, message, code string, payload record.Record, createdAt time.Time) RecordError {
	return RecordError{
		ErrorID:     errorID,
		RunID:       runID,
		StepKey:     stepKey,
		Message:     message,
		Code:        code,
		Recoverable: Classify(message),
		Payload:     payload,
		CreatedAt:   createdAt,
	}
}

// MarkDeadLetter flips the dead-letter flag; a non-recoverable record with a
// retry budget of zero becomes a dead letter.
func (e *RecordError) MarkDeadLetter(deadLetter bool) {
	e.DeadLetter = deadLetter
}

// Retry applies patch as a shallow merge onto Payload, appends an
// ErrorAudit recording the before/after state, and clears the dead-letter
// flag so the record re-enters the loader framework.
func (e *RecordError) Retry(auditID, userID string, patch record.Record, at time.Time) ErrorAudit {
	previous := e.Payload
	resulting := previous.Merge(patch)

	audit := ErrorAudit{
		AuditID:          auditID,
		ErrorID:          e.ErrorID,
		UserID:           userID,
		CreatedAt:        at,
		PreviousPayload:  previous,
		Patch:            patch,
		ResultingPayload: resulting,
	}

	e.Payload = resulting
	e.Audits = append(e.Audits, audit)
	e.DeadLetter = false
	e.Resolved = false
	return audit
}

// Unmark terminates a quarantined record's lifecycle by marking it resolved:
// the supervisory layer has confirmed the retried (or otherwise patched)
// payload made it back through the loader, and this error no longer needs
// attention.
func (e *RecordError) Unmark() {
	e.Resolved = true
	e.DeadLetter = false
}

// ErrorAudit is one append-only retry provenance row.
type ErrorAudit struct {
	AuditID          string
	ErrorID          string
	UserID           string
	CreatedAt        time.Time
	PreviousPayload  record.Record
	Patch            record.Record
	ResultingPayload record.Record
}
