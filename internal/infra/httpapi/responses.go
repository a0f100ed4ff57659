package httpapi

import (
	"errors"
	"net/http"
	"time"

	"fasting_tracker_backend/internal/app"
	"fasting_tracker_backend/internal/domain/fast"
	"fasting_tracker_backend/internal/domain/report"
	idb "fasting_tracker_backend/internal/infra/database"

	"github.com/gin-gonic/gin"
)

type scheduleResponse struct {
	ID            string    `json:"id"`
	StartTime     time.Time `json:"startTime"`
	Recipients    []string  `json:"recipients"`
	IntervalHours int       `json:"intervalHours"`
	NextSendAt    time.Time `json:"nextSendAt"`
	Enabled       bool      `json:"enabled"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toScheduleResponse(rec *report.ScheduledReport) scheduleResponse {
	return scheduleResponse{
		ID:            rec.ID,
		StartTime:     rec.StartTime,
		Recipients:    rec.Recipients,
		IntervalHours: rec.IntervalHours,
		NextSendAt:    rec.NextSendAt,
		Enabled:       rec.Enabled,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

type fastResponse struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	FastType  string     `json:"fastType,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func toFastResponse(f *fast.Fast) fastResponse {
	resp := fastResponse{
		ID:        f.ID,
		StartTime: f.StartTime,
		FastType:  f.FastType,
		CreatedAt: f.CreatedAt,
	}
	if !f.Active() {
		end := f.EndTime.Time
		resp.EndTime = &end
	}
	return resp
}

type noteResponse struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func toNoteResponses(notes []*fast.Note) []noteResponse {
	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteResponse{ID: n.ID, Body: n.Body, CreatedAt: n.CreatedAt})
	}
	return out
}

// writeError maps service errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidStartTime),
		errors.Is(err, report.ErrInvalidInterval),
		errors.Is(err, app.ErrNoRecipients):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, idb.ErrScheduleNotFound),
		errors.Is(err, idb.ErrFastNotFound),
		errors.Is(err, app.ErrNoActiveFast):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app.ErrFastAlreadyActive),
		errors.Is(err, idb.ErrDuplicateFast),
		errors.Is(err, idb.ErrActiveFastExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
