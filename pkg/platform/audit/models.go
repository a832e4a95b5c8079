package audit

import (
	"encoding/json"
	"time"
)

// Severity classifies an event for operators reviewing the log.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// EventName identifies what happened. Client-supplied events carry arbitrary names.
type EventName string

const (
	// Directory events
	EventStudentLookup       EventName = "student_lookup"
	EventStudentNotFound     EventName = "student_not_found"
	EventStudentLookupFailed EventName = "student_lookup_failed"
	EventStudentSaved        EventName = "student_saved"

	// Submission events
	EventAttendanceSubmitted EventName = "attendance_submitted"
	EventAttendanceDuplicate EventName = "attendance_duplicate"
	EventAttendanceFailed    EventName = "attendance_storage_failure"

	// Collusion events
	EventCollusionFlagged         EventName = "collusion_flagged"
	EventCollusionOriginUnmatched EventName = "collusion_origin_unmatched"
	EventCollusionFlagFailed      EventName = "collusion_flag_failed"
)

// defaultSeverities maps known events to their severity.
// Unknown (client) events default to info.
var defaultSeverities = map[EventName]Severity{
	EventStudentNotFound:          SeverityWarning,
	EventStudentLookupFailed:      SeverityError,
	EventAttendanceFailed:         SeverityError,
	EventCollusionFlagged:         SeverityWarning,
	EventCollusionOriginUnmatched: SeverityWarning,
	EventCollusionFlagFailed:      SeverityError,
}

// Severity returns the default severity for this event.
func (e EventName) Severity() Severity {
	if s, ok := defaultSeverities[e]; ok {
		return s
	}
	return SeverityInfo
}

// Entry is what callers hand to Record. Severity is optional.
type Entry struct {
	Name          EventName
	Detail        any
	OriginAddress string
	Severity      Severity
}

// Event is a persisted audit record. Seq is assigned by the store and breaks
// ties between events with equal timestamps.
type Event struct {
	ID            string          `json:"id"`
	Seq           int64           `json:"seq"`
	Name          EventName       `json:"event"`
	Detail        json.RawMessage `json:"details"`
	OriginAddress string          `json:"ip"`
	Severity      Severity        `json:"severity"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Cursor positions keyset pagination: the next page holds events strictly
// older than (Timestamp, Seq).
type Cursor struct {
	Timestamp time.Time
	Seq       int64
}

// CursorOf returns the cursor that resumes after e.
func CursorOf(e Event) *Cursor {
	return &Cursor{Timestamp: e.Timestamp, Seq: e.Seq}
}

// Before reports whether e sorts after the cursor in newest-first order.
func (c *Cursor) Before(e Event) bool {
	if c == nil {
		return true
	}
	if e.Timestamp.Equal(c.Timestamp) {
		return e.Seq < c.Seq
	}
	return e.Timestamp.Before(c.Timestamp)
}
