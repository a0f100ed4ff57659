package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fasting_tracker_backend/internal/app"

	"github.com/gin-gonic/gin"
)

type startFastRequest struct {
	StartTime  time.Time     `json:"startTime"` // Zero means "now"
	FastType   string        `json:"fastType" validate:"max=64"`
	Recipients RecipientList `json:"recipients"`
	AutoEnable bool          `json:"autoEnable"`
}

// StartFast handles POST /api/fasts.
func StartFast(svc *app.FastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		var req startFastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(req); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		f, err := svc.StartFast(ctx, currentUserID(c), req.StartTime, req.FastType, req.Recipients, req.AutoEnable)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toFastResponse(f))
	}
}

// StopFast handles POST /api/fasts/stop.
func StopFast(svc *app.FastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		f, err := svc.StopFast(ctx, currentUserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toFastResponse(f))
	}
}

// CurrentFast handles GET /api/fasts/current.
func CurrentFast(svc *app.FastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		f, notes, err := svc.Current(ctx, currentUserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"fast":  toFastResponse(f),
			"notes": toNoteResponses(notes),
		})
	}
}

// ListFasts handles GET /api/fasts.
func ListFasts(svc *app.FastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		fasts, err := svc.History(ctx, currentUserID(c), limit)
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]fastResponse, 0, len(fasts))
		for _, f := range fasts {
			out = append(out, toFastResponse(f))
		}
		c.JSON(http.StatusOK, out)
	}
}

// DeleteFast handles DELETE /api/fasts/:id.
func DeleteFast(svc *app.FastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := svc.Delete(ctx, currentUserID(c), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type addNoteRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// AddNote handles POST /api/fasts/notes.
func AddNote(svc *app.FastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		var req addNoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(req); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		n, err := svc.AddNote(ctx, currentUserID(c), req.Body)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, noteResponse{ID: n.ID, Body: n.Body, CreatedAt: n.CreatedAt})
	}
}
