// internal/domain/report/report.go
package report

import (
	"database/sql"
	"time"
)

// ScheduledReport is a recurring status-report subscription for one fast.
// One record exists per (user_id, start_time) pair that was ever scheduled.
// Corresponds to the 'scheduled_reports' table.
type ScheduledReport struct {
	ID            string         // UUID, stable for the life of the record
	UserID        string         // Owner; every operation is scoped to this
	FastID        sql.NullString // Weak reference to a fast record; may be absent
	StartTime     time.Time      // Anchor epoch of the fast; immutable once set
	Recipients    []string       // Normalized ordered set of email addresses
	IntervalHours int            // Cadence between sends after the first anchor
	NextSendAt    time.Time      // When the next send is due
	Enabled       bool           // A disabled schedule is inert regardless of NextSendAt
	Processing    bool           // Guard against concurrent dispatch of the same record
	ProcessingAt  sql.NullTime   // When the current claim was taken; basis for staleness
	SendAttempts  int            // Consecutive failed send attempts; reset on success
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Snapshot is the materialized state handed to rendering and mail dispatch.
type Snapshot struct {
	StartTime    time.Time
	ElapsedHours float64
	FastType     string
	Notes        []string // Ordered by creation time
}
