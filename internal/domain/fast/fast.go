// internal/domain/fast/fast.go
package fast

import (
	"database/sql"
	"time"
)

// Fast represents one fasting period for a user.
// Corresponds to the 'fasts' table.
type Fast struct {
	ID        string // UUID
	UserID    string
	StartTime time.Time
	EndTime   sql.NullTime // Unset while the fast is in progress
	FastType  string       // Free-form label, e.g. "16:8" or "watered"
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the fast is still in progress.
func (f *Fast) Active() bool {
	return !f.EndTime.Valid
}

// Note is a timestamped remark attached to a fast.
// Corresponds to the 'fast_notes' table.
type Note struct {
	ID        int64
	FastID    string
	Body      string
	CreatedAt time.Time
}
