// internal/app/fast_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"fasting_tracker_backend/internal/domain/fast"
	idb "fasting_tracker_backend/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Custom application-level errors for the fast service
var ErrFastAlreadyActive = fmt.Errorf("user already has a fast in progress")
var ErrNoActiveFast = fmt.Errorf("user has no fast in progress")

// FastService handles the lifecycle of fast records. Stopping or deleting a
// fast also tears down any recurring report schedule anchored to it.
type FastService struct {
	fastRepo    fast.Repository
	scheduleSvc *ScheduleService
	logger      *logrus.Entry
	now         func() time.Time
}

func NewFastService(fr fast.Repository, ss *ScheduleService, logger *logrus.Entry) *FastService {
	return &FastService{
		fastRepo:    fr,
		scheduleSvc: ss,
		logger:      logger,
		now:         time.Now,
	}
}

// StartFast begins a new fast. startTime may be zero to mean "now". When
// autoEnable is set, a recurring report schedule is created alongside.
func (s *FastService) StartFast(ctx context.Context, userID string, startTime time.Time, fastType string, recipients []string, autoEnable bool) (*fast.Fast, error) {
	_, err := s.fastRepo.GetActive(ctx, userID)
	if err == nil {
		return nil, ErrFastAlreadyActive
	}
	if err != idb.ErrFastNotFound {
		return nil, fmt.Errorf("failed to check for active fast: %w", err)
	}

	if startTime.IsZero() {
		startTime = s.now()
	}

	f := &fast.Fast{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartTime: startTime.UTC(),
		FastType:  fastType,
	}
	if err := s.fastRepo.Create(ctx, f); err != nil {
		// The store enforces one active fast per user, so a concurrent start
		// that slipped past the GetActive check still loses here.
		if err == idb.ErrActiveFastExists {
			return nil, ErrFastAlreadyActive
		}
		return nil, fmt.Errorf("failed to create fast: %w", err)
	}
	s.logger.Infof("Fast started for user %s at %s (type %q).", userID, f.StartTime.Format(time.RFC3339), f.FastType)

	if autoEnable {
		if _, err := s.scheduleSvc.CreateOrEnable(ctx, userID, f.ID, f.StartTime, recipients, 0); err != nil {
			return nil, fmt.Errorf("fast started but schedule enable failed: %w", err)
		}
	}
	return f, nil
}

// StopFast ends the user's in-progress fast and disables its report schedule.
func (s *FastService) StopFast(ctx context.Context, userID string) (*fast.Fast, error) {
	f, err := s.fastRepo.GetActive(ctx, userID)
	if err != nil {
		if err == idb.ErrFastNotFound {
			return nil, ErrNoActiveFast
		}
		return nil, fmt.Errorf("failed to get active fast: %w", err)
	}

	f.EndTime.Time = s.now().UTC()
	f.EndTime.Valid = true
	if err := s.fastRepo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to stop fast: %w", err)
	}
	s.logger.Infof("Fast stopped for user %s (started %s).", userID, f.StartTime.Format(time.RFC3339))

	// A stopped fast must not keep emailing reports.
	if err := s.scheduleSvc.Cancel(ctx, userID, f.StartTime); err != nil {
		return nil, fmt.Errorf("fast stopped but schedule teardown failed: %w", err)
	}
	return f, nil
}

// AddNote attaches a note to the user's in-progress fast.
func (s *FastService) AddNote(ctx context.Context, userID, body string) (*fast.Note, error) {
	f, err := s.fastRepo.GetActive(ctx, userID)
	if err != nil {
		if err == idb.ErrFastNotFound {
			return nil, ErrNoActiveFast
		}
		return nil, fmt.Errorf("failed to get active fast for note: %w", err)
	}

	n := &fast.Note{FastID: f.ID, Body: body}
	if err := s.fastRepo.AddNote(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	return n, nil
}

// Current returns the in-progress fast and its notes.
func (s *FastService) Current(ctx context.Context, userID string) (*fast.Fast, []*fast.Note, error) {
	f, err := s.fastRepo.GetActive(ctx, userID)
	if err != nil {
		if err == idb.ErrFastNotFound {
			return nil, nil, ErrNoActiveFast
		}
		return nil, nil, fmt.Errorf("failed to get active fast: %w", err)
	}
	notes, err := s.fastRepo.ListNotes(ctx, f.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return f, notes, nil
}

// History returns the user's fasts, newest first.
func (s *FastService) History(ctx context.Context, userID string, limit int) ([]*fast.Fast, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.fastRepo.ListByUser(ctx, userID, limit)
}

// Delete removes a fast and its notes and disables its report schedule.
func (s *FastService) Delete(ctx context.Context, userID, id string) error {
	f, err := s.fastRepo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.fastRepo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete fast: %w", err)
	}
	if err := s.scheduleSvc.Cancel(ctx, userID, f.StartTime); err != nil {
		return fmt.Errorf("fast deleted but schedule teardown failed: %w", err)
	}
	s.logger.Infof("Fast %s deleted for user %s.", id, userID)
	return nil
}
