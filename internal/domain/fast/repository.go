// internal/domain/fast/repository.go
package fast

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and retrieving Fast entities.
type Repository interface {
	Create(ctx context.Context, f *Fast) error
	GetByID(ctx context.Context, userID, id string) (*Fast, error)
	GetByUserAndStart(ctx context.Context, userID string, startTime time.Time) (*Fast, error)
	// GetActive returns the user's in-progress fast (end_time IS NULL).
	GetActive(ctx context.Context, userID string) (*Fast, error)
	Update(ctx context.Context, f *Fast) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*Fast, error)
	Delete(ctx context.Context, userID, id string) error

	AddNote(ctx context.Context, n *Note) error
	ListNotes(ctx context.Context, fastID string) ([]*Note, error)
}
