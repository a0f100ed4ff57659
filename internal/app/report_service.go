// internal/app/report_service.go
package app

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"fasting_tracker_backend/internal/domain/email"
	"fasting_tracker_backend/internal/domain/fast"
	"fasting_tracker_backend/internal/domain/report"
	idb "fasting_tracker_backend/internal/infra/database"

	"github.com/sirupsen/logrus"
)

var statusTemplate = template.Must(template.New("status").Parse(
	`Fasting status report

Started: {{.StartTime.Format "2006-01-02 15:04 MST"}}
Elapsed: {{printf "%.1f" .ElapsedHours}} hours
{{- if .FastType}}
Type:    {{.FastType}}
{{- end}}
{{- if .Notes}}

Notes:
{{- range .Notes}}
  - {{.}}
{{- end}}
{{- end}}
`))

// ReportService builds report snapshots, renders them and hands them to the
// mailer. It backs both the one-off status/history endpoints and the
// recurring dispatcher.
type ReportService struct {
	fastRepo    fast.Repository
	scheduleSvc *ScheduleService
	mailer      email.Client
	logger      *logrus.Entry
	now         func() time.Time
}

func NewReportService(fr fast.Repository, ss *ScheduleService, mc email.Client, logger *logrus.Entry) *ReportService {
	return &ReportService{
		fastRepo:    fr,
		scheduleSvc: ss,
		mailer:      mc,
		logger:      logger,
		now:         time.Now,
	}
}

// BuildSnapshot materializes the report state for a fast identified by its
// start time. Schedules may exist without a matching fast record (keyed by
// start time alone), so a missing fast degrades to a bare snapshot instead
// of failing the send.
func (s *ReportService) BuildSnapshot(ctx context.Context, userID string, startTime time.Time) (*report.Snapshot, error) {
	snap := &report.Snapshot{StartTime: startTime}

	f, err := s.fastRepo.GetByUserAndStart(ctx, userID, startTime)
	if err != nil {
		if err != idb.ErrFastNotFound {
			return nil, fmt.Errorf("failed to load fast for snapshot: %w", err)
		}
		snap.ElapsedHours = s.now().Sub(startTime).Hours()
		return snap, nil
	}

	snap.FastType = f.FastType
	end := s.now()
	if !f.Active() {
		end = f.EndTime.Time
	}
	snap.ElapsedHours = end.Sub(f.StartTime).Hours()

	notes, err := s.fastRepo.ListNotes(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes for snapshot: %w", err)
	}
	for _, n := range notes {
		snap.Notes = append(snap.Notes, fmt.Sprintf("%s: %s", n.CreatedAt.Format("2006-01-02 15:04"), n.Body))
	}
	return snap, nil
}

// Render produces the plain-text report body for a snapshot.
func (s *ReportService) Render(snap *report.Snapshot) (string, error) {
	var sb strings.Builder
	if err := statusTemplate.Execute(&sb, snap); err != nil {
		return "", fmt.Errorf("failed to render status report: %w", err)
	}
	return sb.String(), nil
}

// SendStatusReport sends a one-off status report and, when autoEnable is set,
// attaches a recurring schedule with the same recipients.
func (s *ReportService) SendStatusReport(ctx context.Context, userID string, startTime time.Time, recipients []string, autoEnable bool) error {
	if startTime.IsZero() {
		return report.ErrInvalidStartTime
	}
	normalized := report.NormalizeRecipients(recipients)
	if len(normalized) == 0 {
		return ErrNoRecipients
	}

	snap, err := s.BuildSnapshot(ctx, userID, startTime.UTC())
	if err != nil {
		return err
	}
	body, err := s.Render(snap)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Fasting status: %.0f hours", snap.ElapsedHours)
	if err := s.mailer.Send(ctx, normalized, subject, body); err != nil {
		return fmt.Errorf("failed to send status report: %w", err)
	}
	s.logger.Infof("Status report sent for user %s, start %s to %d recipient(s).", userID, startTime.Format(time.RFC3339), len(normalized))

	if _, err := s.scheduleSvc.AttachFromReportSend(ctx, userID, startTime.UTC(), normalized, autoEnable); err != nil {
		return fmt.Errorf("status report sent but schedule attach failed: %w", err)
	}
	return nil
}

// SendScheduledReport renders and sends one recurring report. The dispatcher
// owns claiming and rescheduling; this only performs the send itself.
func (s *ReportService) SendScheduledReport(ctx context.Context, rec *report.ScheduledReport) error {
	if len(rec.Recipients) == 0 {
		return ErrNoRecipients
	}

	snap, err := s.BuildSnapshot(ctx, rec.UserID, rec.StartTime)
	if err != nil {
		return err
	}
	body, err := s.Render(snap)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Fasting status: %.0f hours", snap.ElapsedHours)
	if err := s.mailer.Send(ctx, rec.Recipients, subject, body); err != nil {
		return fmt.Errorf("failed to send scheduled report: %w", err)
	}
	return nil
}

// SendHistoryReport emails the user's fast history.
func (s *ReportService) SendHistoryReport(ctx context.Context, userID string, recipients []string, limit int) error {
	normalized := report.NormalizeRecipients(recipients)
	if len(normalized) == 0 {
		return ErrNoRecipients
	}
	if limit <= 0 {
		limit = 50
	}

	fasts, err := s.fastRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return fmt.Errorf("failed to list fasts for history report: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Fasting history\n\n")
	if len(fasts) == 0 {
		sb.WriteString("No fasts recorded yet.\n")
	}
	for _, f := range fasts {
		end := "in progress"
		elapsed := s.now().Sub(f.StartTime).Hours()
		if !f.Active() {
			end = f.EndTime.Time.Format("2006-01-02 15:04")
			elapsed = f.EndTime.Time.Sub(f.StartTime).Hours()
		}
		label := f.FastType
		if label == "" {
			label = "fast"
		}
		sb.WriteString(fmt.Sprintf("  %s  %s to %s (%.1f hours)\n", label, f.StartTime.Format("2006-01-02 15:04"), end, elapsed))
	}

	if err := s.mailer.Send(ctx, normalized, "Fasting history", sb.String()); err != nil {
		return fmt.Errorf("failed to send history report: %w", err)
	}
	s.logger.Infof("History report sent for user %s to %d recipient(s).", userID, len(normalized))
	return nil
}
