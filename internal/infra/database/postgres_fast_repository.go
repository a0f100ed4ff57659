// internal/infra/database/postgres_fast_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fasting_tracker_backend/internal/domain/fast"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrFastNotFound = fmt.Errorf("fast not found")
var ErrDuplicateFast = fmt.Errorf("fast with this start time already exists for user")
var ErrActiveFastExists = fmt.Errorf("user already has an active fast")

type PostgresFastRepository struct {
	db *sql.DB
}

func NewPostgresFastRepository(db *sql.DB) *PostgresFastRepository {
	return &PostgresFastRepository{db: db}
}

func (r *PostgresFastRepository) Create(ctx context.Context, f *fast.Fast) error {
	query := `INSERT INTO fasts (id, user_id, start_time, end_time, fast_type)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, f.ID, f.UserID, f.StartTime, f.EndTime, f.FastType).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "fasts_user_start_unique") {
			return ErrDuplicateFast
		}
		// The partial unique index admits one end_time IS NULL row per user.
		if strings.Contains(err.Error(), "fasts_user_active_idx") {
			return ErrActiveFastExists
		}
		return fmt.Errorf("error creating fast: %w", err)
	}
	return nil
}

func (r *PostgresFastRepository) GetByID(ctx context.Context, userID, id string) (*fast.Fast, error) {
	query := `SELECT id, user_id, start_time, end_time, fast_type, created_at, updated_at
               FROM fasts WHERE user_id = $1 AND id = $2`
	f := &fast.Fast{}
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(&f.ID, &f.UserID, &f.StartTime, &f.EndTime, &f.FastType, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFastNotFound
		}
		return nil, fmt.Errorf("error getting fast by ID: %w", err)
	}
	return f, nil
}

func (r *PostgresFastRepository) GetByUserAndStart(ctx context.Context, userID string, startTime time.Time) (*fast.Fast, error) {
	query := `SELECT id, user_id, start_time, end_time, fast_type, created_at, updated_at
               FROM fasts WHERE user_id = $1 AND start_time = $2`
	f := &fast.Fast{}
	err := r.db.QueryRowContext(ctx, query, userID, startTime).Scan(&f.ID, &f.UserID, &f.StartTime, &f.EndTime, &f.FastType, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFastNotFound
		}
		return nil, fmt.Errorf("error getting fast by user and start time: %w", err)
	}
	return f, nil
}

func (r *PostgresFastRepository) GetActive(ctx context.Context, userID string) (*fast.Fast, error) {
	query := `SELECT id, user_id, start_time, end_time, fast_type, created_at, updated_at
               FROM fasts WHERE user_id = $1 AND end_time IS NULL
               ORDER BY start_time DESC LIMIT 1`
	f := &fast.Fast{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&f.ID, &f.UserID, &f.StartTime, &f.EndTime, &f.FastType, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFastNotFound
		}
		return nil, fmt.Errorf("error getting active fast: %w", err)
	}
	return f, nil
}

func (r *PostgresFastRepository) Update(ctx context.Context, f *fast.Fast) error {
	query := `UPDATE fasts
               SET end_time = $1, fast_type = $2, updated_at = NOW()
               WHERE id = $3
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, f.EndTime, f.FastType, f.ID).Scan(&f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrFastNotFound
		}
		return fmt.Errorf("error updating fast: %w", err)
	}
	return nil
}

func (r *PostgresFastRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*fast.Fast, error) {
	query := `SELECT id, user_id, start_time, end_time, fast_type, created_at, updated_at
               FROM fasts WHERE user_id = $1 ORDER BY start_time DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing fasts: %w", err)
	}
	defer rows.Close()

	fasts := make([]*fast.Fast, 0)
	for rows.Next() {
		f := &fast.Fast{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.StartTime, &f.EndTime, &f.FastType, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning fast: %w", err)
		}
		fasts = append(fasts, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fasts: %w", err)
	}
	return fasts, nil
}

func (r *PostgresFastRepository) Delete(ctx context.Context, userID, id string) error {
	// fast_notes rows go with the fast via ON DELETE CASCADE.
	query := `DELETE FROM fasts WHERE user_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("error deleting fast: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading delete result: %w", err)
	}
	if affected == 0 {
		return ErrFastNotFound
	}
	return nil
}

func (r *PostgresFastRepository) AddNote(ctx context.Context, n *fast.Note) error {
	query := `INSERT INTO fast_notes (fast_id, body)
               VALUES ($1, $2)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, n.FastID, n.Body).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("error adding fast note: %w", err)
	}
	return nil
}

func (r *PostgresFastRepository) ListNotes(ctx context.Context, fastID string) ([]*fast.Note, error) {
	query := `SELECT id, fast_id, body, created_at
               FROM fast_notes WHERE fast_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, fastID)
	if err != nil {
		return nil, fmt.Errorf("error listing fast notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*fast.Note, 0)
	for rows.Next() {
		n := &fast.Note{}
		if err := rows.Scan(&n.ID, &n.FastID, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning fast note: %w", err)
		}
		notes = append(notes, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fast notes: %w", err)
	}
	return notes, nil
}
