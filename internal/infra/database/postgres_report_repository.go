// internal/infra/database/postgres_report_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fasting_tracker_backend/internal/domain/report"

	"github.com/lib/pq" // For pq.Array and driver registration
)

// Custom errors specific to the scheduled report repository
var ErrScheduleNotFound = fmt.Errorf("scheduled report not found")

type PostgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(db *sql.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

const reportColumns = `id, user_id, fast_id, start_time, recipients, interval_hours,
               next_send_at, enabled, processing, processing_at, send_attempts, created_at, updated_at`

func scanReport(row interface {
	Scan(dest ...any) error
}) (*report.ScheduledReport, error) {
	rec := &report.ScheduledReport{}
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.FastID, &rec.StartTime, pq.Array(&rec.Recipients),
		&rec.IntervalHours, &rec.NextSendAt, &rec.Enabled, &rec.Processing,
		&rec.ProcessingAt, &rec.SendAttempts, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Upsert inserts or replaces the schedule keyed by (user_id, start_time) in a
// single statement, so two racing enables cannot produce duplicate records.
// An existing record keeps its id and created_at.
func (r *PostgresReportRepository) Upsert(ctx context.Context, rec *report.ScheduledReport) error {
	query := `INSERT INTO scheduled_reports
                 (id, user_id, fast_id, start_time, recipients, interval_hours, next_send_at, enabled, processing, processing_at, send_attempts)
               VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, FALSE, NULL, 0)
               ON CONFLICT (user_id, start_time) DO UPDATE
                 SET recipients     = EXCLUDED.recipients,
                     interval_hours = EXCLUDED.interval_hours,
                     next_send_at   = EXCLUDED.next_send_at,
                     fast_id        = COALESCE(EXCLUDED.fast_id, scheduled_reports.fast_id),
                     enabled        = TRUE,
                     processing     = FALSE,
                     processing_at  = NULL,
                     send_attempts  = 0,
                     updated_at     = NOW()
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.UserID, rec.FastID, rec.StartTime, pq.Array(rec.Recipients),
		rec.IntervalHours, rec.NextSendAt,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting scheduled report: %w", err)
	}
	rec.Enabled = true
	rec.Processing = false
	rec.SendAttempts = 0
	return nil
}

func (r *PostgresReportRepository) GetByUserAndStart(ctx context.Context, userID string, startTime time.Time) (*report.ScheduledReport, error) {
	query := `SELECT ` + reportColumns + `
               FROM scheduled_reports WHERE user_id = $1 AND start_time = $2`
	rec, err := scanReport(r.db.QueryRowContext(ctx, query, userID, startTime))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("error getting scheduled report: %w", err)
	}
	return rec, nil
}

func (r *PostgresReportRepository) Disable(ctx context.Context, userID string, startTime time.Time) error {
	query := `UPDATE scheduled_reports
               SET enabled = FALSE, recipients = '{}', processing = FALSE, processing_at = NULL, updated_at = NOW()
               WHERE user_id = $1 AND start_time = $2
               RETURNING id`
	var id string
	err := r.db.QueryRowContext(ctx, query, userID, startTime).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("error disabling scheduled report: %w", err)
	}
	return nil
}

func (r *PostgresReportRepository) DisableByID(ctx context.Context, id string) error {
	query := `UPDATE scheduled_reports
               SET enabled = FALSE, processing = FALSE, processing_at = NULL, updated_at = NOW()
               WHERE id = $1
               RETURNING id`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("error disabling scheduled report by ID: %w", err)
	}
	return nil
}

func (r *PostgresReportRepository) ListDue(ctx context.Context, now, staleBefore time.Time, limit int) ([]*report.ScheduledReport, error) {
	query := `SELECT ` + reportColumns + `
               FROM scheduled_reports
               WHERE enabled = TRUE
                 AND next_send_at <= $1
                 AND (processing = FALSE OR processing_at < $2)
               ORDER BY next_send_at ASC
               LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, now, staleBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying due scheduled reports: %w", err)
	}
	defer rows.Close()

	due := make([]*report.ScheduledReport, 0)
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning due scheduled report: %w", err)
		}
		due = append(due, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due scheduled reports: %w", err)
	}
	return due, nil
}

// TryClaim is a single guarded UPDATE, so exactly one of several concurrent
// sweeps can take a given record. A claim whose processing_at predates
// staleBefore is assumed crashed and is taken over.
func (r *PostgresReportRepository) TryClaim(ctx context.Context, id string, now, staleBefore time.Time) (bool, error) {
	query := `UPDATE scheduled_reports
               SET processing = TRUE, processing_at = $2, updated_at = NOW()
               WHERE id = $1
                 AND enabled = TRUE
                 AND (processing = FALSE OR processing_at < $3)`
	res, err := r.db.ExecContext(ctx, query, id, now, staleBefore)
	if err != nil {
		return false, fmt.Errorf("error claiming scheduled report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading claim result: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresReportRepository) CompleteSend(ctx context.Context, id string, nextSendAt time.Time) error {
	query := `UPDATE scheduled_reports
               SET next_send_at = $2, processing = FALSE, processing_at = NULL, send_attempts = 0, updated_at = NOW()
               WHERE id = $1
               RETURNING updated_at`
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, id, nextSendAt).Scan(&updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("error completing send for scheduled report: %w", err)
	}
	return nil
}

func (r *PostgresReportRepository) ReleaseClaim(ctx context.Context, id string) (int, error) {
	query := `UPDATE scheduled_reports
               SET processing = FALSE, processing_at = NULL, send_attempts = send_attempts + 1, updated_at = NOW()
               WHERE id = $1
               RETURNING send_attempts`
	var attempts int
	err := r.db.QueryRowContext(ctx, query, id).Scan(&attempts)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrScheduleNotFound
		}
		return 0, fmt.Errorf("error releasing claim on scheduled report: %w", err)
	}
	return attempts, nil
}
