// internal/domain/report/repository.go
package report

import (
	"context"
	"time"
)

// Repository defines persistence operations for ScheduledReport records.
// Mutations on a single record must be atomic at the record level; the
// idempotency and race-safety guarantees of the scheduler depend on it.
type Repository interface {
	// Upsert atomically creates or replaces the schedule keyed by
	// (UserID, StartTime), filling ID/CreatedAt/UpdatedAt on the passed record.
	// Re-enabling an existing record keeps its ID and CreatedAt.
	Upsert(ctx context.Context, rec *ScheduledReport) error

	GetByUserAndStart(ctx context.Context, userID string, startTime time.Time) (*ScheduledReport, error)

	// Disable soft-disables the schedule and clears its recipients.
	// Returns ErrScheduleNotFound (from the implementing package) when no
	// record exists; callers that treat that as a no-op check for it.
	Disable(ctx context.Context, userID string, startTime time.Time) error

	// DisableByID disables a schedule without touching its recipients.
	// Used by the dispatcher's terminal-failure policy so the user can
	// re-enable without re-entering addresses.
	DisableByID(ctx context.Context, id string) error

	// ListDue returns enabled records with NextSendAt <= now that are not
	// currently claimed, or whose claim is older than staleBefore.
	ListDue(ctx context.Context, now, staleBefore time.Time, limit int) ([]*ScheduledReport, error)

	// TryClaim atomically flips processing false->true for the record.
	// A claim held since before staleBefore is treated as crashed and is
	// taken over. Returns false when another worker holds a live claim or
	// the record was disabled in the meantime.
	TryClaim(ctx context.Context, id string, now, staleBefore time.Time) (bool, error)

	// CompleteSend records a successful dispatch: advances NextSendAt,
	// releases the claim and resets the failure counter, in one update.
	CompleteSend(ctx context.Context, id string, nextSendAt time.Time) error

	// ReleaseClaim releases the claim after a failed send, leaving
	// NextSendAt unchanged so the next sweep retries. Returns the new
	// consecutive-failure count.
	ReleaseClaim(ctx context.Context, id string) (int, error)
}
