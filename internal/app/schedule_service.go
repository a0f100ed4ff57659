// internal/app/schedule_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fasting_tracker_backend/internal/domain/report"
	idb "fasting_tracker_backend/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Custom application-level errors for the schedule service
var ErrNoRecipients = fmt.Errorf("recipient list is empty after normalization")

// ScheduleService orchestrates the lifecycle of recurring report schedules.
// All operations are scoped to the authenticated user and keyed by
// (userID, startTime); the repository's upsert keeps concurrent calls safe.
type ScheduleService struct {
	reportRepo           report.Repository
	defaultIntervalHours int
	logger               *logrus.Entry
	now                  func() time.Time
}

func NewScheduleService(rr report.Repository, defaultIntervalHours int, logger *logrus.Entry) *ScheduleService {
	if defaultIntervalHours <= 0 {
		defaultIntervalHours = report.DefaultIntervalHours
	}
	return &ScheduleService{
		reportRepo:           rr,
		defaultIntervalHours: defaultIntervalHours,
		logger:               logger,
		now:                  time.Now,
	}
}

// CreateOrEnable upserts the schedule for (userID, startTime). Calling it again
// replaces the recipient list and re-arms the schedule; it never duplicates the
// record. fastID may be empty when the schedule is keyed by start time alone.
func (s *ScheduleService) CreateOrEnable(ctx context.Context, userID, fastID string, startTime time.Time, recipients []string, intervalHours int) (*report.ScheduledReport, error) {
	if startTime.IsZero() {
		return nil, report.ErrInvalidStartTime
	}

	normalized := report.NormalizeRecipients(recipients)
	if len(normalized) == 0 {
		return nil, ErrNoRecipients
	}

	if intervalHours == 0 {
		intervalHours = s.defaultIntervalHours
	}

	nextSendAt, err := report.ComputeNextSend(startTime, s.now(), intervalHours)
	if err != nil {
		return nil, err
	}

	rec := &report.ScheduledReport{
		ID:            uuid.NewString(),
		UserID:        userID,
		StartTime:     startTime.UTC(),
		Recipients:    normalized,
		IntervalHours: intervalHours,
		NextSendAt:    nextSendAt,
	}
	if fastID != "" {
		rec.FastID = sql.NullString{String: fastID, Valid: true}
	}

	if err := s.reportRepo.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to upsert scheduled report: %w", err)
	}

	s.logger.Infof("Schedule enabled for user %s, start %s: next send at %s, every %dh to %d recipient(s).",
		userID, rec.StartTime.Format(time.RFC3339), rec.NextSendAt.Format(time.RFC3339), rec.IntervalHours, len(rec.Recipients))
	return rec, nil
}

// Query returns the schedule for (userID, startTime) or ErrScheduleNotFound.
// Read-only, no side effects.
func (s *ScheduleService) Query(ctx context.Context, userID string, startTime time.Time) (*report.ScheduledReport, error) {
	if startTime.IsZero() {
		return nil, report.ErrInvalidStartTime
	}
	return s.reportRepo.GetByUserAndStart(ctx, userID, startTime.UTC())
}

// Cancel soft-disables the schedule and clears its recipients. The record is
// kept so a later re-enable reuses the same id and createdAt. Cancelling a
// schedule that does not exist is a no-op, not an error.
func (s *ScheduleService) Cancel(ctx context.Context, userID string, startTime time.Time) error {
	if startTime.IsZero() {
		return report.ErrInvalidStartTime
	}
	err := s.reportRepo.Disable(ctx, userID, startTime.UTC())
	if err != nil {
		if err == idb.ErrScheduleNotFound {
			s.logger.Debugf("Cancel for user %s, start %s matched no schedule. Nothing to do.", userID, startTime.Format(time.RFC3339))
			return nil
		}
		return fmt.Errorf("failed to disable scheduled report: %w", err)
	}
	s.logger.Infof("Schedule cancelled for user %s, start %s.", userID, startTime.Format(time.RFC3339))
	return nil
}

// AttachFromReportSend is the composition used when a one-off status report
// also requests recurring delivery. With autoEnable false any existing
// schedule is left untouched.
func (s *ScheduleService) AttachFromReportSend(ctx context.Context, userID string, startTime time.Time, recipients []string, autoEnable bool) (*report.ScheduledReport, error) {
	if !autoEnable {
		return nil, nil
	}
	return s.CreateOrEnable(ctx, userID, "", startTime, recipients, 0)
}
