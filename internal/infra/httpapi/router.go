package httpapi

import (
	"net/http"

	"fasting_tracker_backend/internal/app"

	"github.com/gin-gonic/gin"
)

// NewRouter wires all endpoints. Everything under /api requires a resolved
// user identity.
func NewRouter(fastSvc *app.FastService, scheduleSvc *app.ScheduleService, reportSvc *app.ReportService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(Identity())
	{
		api.POST("/fasts", StartFast(fastSvc))
		api.POST("/fasts/stop", StopFast(fastSvc))
		api.GET("/fasts/current", CurrentFast(fastSvc))
		api.GET("/fasts", ListFasts(fastSvc))
		api.DELETE("/fasts/:id", DeleteFast(fastSvc))
		api.POST("/fasts/notes", AddNote(fastSvc))

		api.POST("/reports/status", SendStatusReport(reportSvc))
		api.POST("/reports/history", SendHistoryReport(reportSvc))

		api.POST("/reports/schedule", CreateSchedule(scheduleSvc))
		api.GET("/reports/schedule", GetSchedule(scheduleSvc))
		api.DELETE("/reports/schedule", CancelSchedule(scheduleSvc))
	}

	return r
}
