package httpapi

import (
	"context"
	"net/http"
	"time"

	"fasting_tracker_backend/internal/app"
	"fasting_tracker_backend/internal/domain/report"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const requestTimeout = 10 * time.Second

type scheduleRequest struct {
	StartTime     time.Time     `json:"startTime" validate:"required"`
	Recipients    RecipientList `json:"recipients" validate:"required"`
	IntervalHours int           `json:"intervalHours" validate:"gte=0"`
}

// CreateSchedule handles POST /api/reports/schedule.
func CreateSchedule(svc *app.ScheduleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		var req scheduleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(req); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		rec, err := svc.CreateOrEnable(ctx, currentUserID(c), "", req.StartTime, req.Recipients, req.IntervalHours)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toScheduleResponse(rec))
	}
}

// GetSchedule handles GET /api/reports/schedule?startTime=...
func GetSchedule(svc *app.ScheduleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		startTime, err := parseStartTimeParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rec, err := svc.Query(ctx, currentUserID(c), startTime)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toScheduleResponse(rec))
	}
}

// CancelSchedule handles DELETE /api/reports/schedule?startTime=...
// Cancelling a schedule that does not exist still returns 204.
func CancelSchedule(svc *app.ScheduleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		startTime, err := parseStartTimeParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := svc.Cancel(ctx, currentUserID(c), startTime); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type statusReportRequest struct {
	StartTime  time.Time     `json:"startTime" validate:"required"`
	Recipients RecipientList `json:"recipients" validate:"required"`
	AutoEnable bool          `json:"autoEnable"`
}

// SendStatusReport handles POST /api/reports/status. With autoEnable set the
// one-off send also attaches a recurring schedule.
func SendStatusReport(svc *app.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var req statusReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(req); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		if err := svc.SendStatusReport(ctx, currentUserID(c), req.StartTime, req.Recipients, req.AutoEnable); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
	}
}

type historyReportRequest struct {
	Recipients RecipientList `json:"recipients" validate:"required"`
	Limit      int           `json:"limit" validate:"gte=0"`
}

// SendHistoryReport handles POST /api/reports/history.
func SendHistoryReport(svc *app.ReportService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var req historyReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(req); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		if err := svc.SendHistoryReport(ctx, currentUserID(c), req.Recipients, req.Limit); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
	}
}

func parseStartTimeParam(c *gin.Context) (time.Time, error) {
	raw := c.Query("startTime")
	if raw == "" {
		return time.Time{}, report.ErrInvalidStartTime
	}
	startTime, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, report.ErrInvalidStartTime
	}
	return startTime, nil
}
