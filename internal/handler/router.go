package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edupulse/presence-api/internal/middleware"
	"github.com/edupulse/presence-api/pkg/config"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Attendance   *AttendanceHandler
	Occurrence   *OccurrenceHandler
	Device       *DeviceHandler
	Student      *StudentHandler
	Reference    *ReferenceHandler
	Report       *ReportHandler
	Presentation *PresentationHandler
	Metrics      *MetricsHandler
}

// Register mounts all routes under the configured API prefix. Everything
// under the prefix requires a bearer token from the identity provider;
// health, readiness and metrics stay open for the platform.
func Register(r *gin.Engine, cfg *config.Config, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	// Export downloads authenticate through the signed token itself.
	r.GET("/exports/:token", h.Report.Download)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT))

	api.POST("/attendance", h.Attendance.Register)
	api.POST("/proximity/detections", h.Attendance.LogDetection)
	api.GET("/attendance/:id", h.Attendance.Get)
	api.POST("/attendance/:id/confirm", h.Attendance.Confirm)

	api.GET("/occurrences/:id", h.Occurrence.Get)
	api.POST("/occurrences/:id/token", h.Occurrence.IssueToken)
	api.GET("/occurrences/:id/attendance", h.Attendance.ListByOccurrence)
	api.GET("/occurrences/:id/attendance/export", h.Report.ExportSheet)
	api.PUT("/occurrences/:id/presentation", h.Presentation.Publish)
	api.GET("/occurrences/:id/presentation", h.Presentation.Get)
	api.DELETE("/occurrences/:id/presentation", h.Presentation.Remove)

	api.GET("/professors/:id/occurrences", h.Occurrence.ProfessorSchedule)
	api.GET("/professors/:id/students", h.Student.ByProfessor)

	api.GET("/students", h.Student.List)
	api.GET("/students/:index", h.Student.Get)
	api.GET("/students/:index/validate", h.Student.Validate)
	api.GET("/students/:index/attendance", h.Attendance.History)
	api.GET("/students/:index/attendance/summary", h.Attendance.Summary)
	api.GET("/students/:index/occurrences/active", h.Occurrence.ActiveForStudent)
	api.GET("/students/:index/device", h.Device.BoundDevice)

	api.POST("/devices/link", h.Device.RequestLink)
	api.GET("/devices/link/pending", h.Device.ListPending)

	api.GET("/rooms", h.Reference.Rooms)
	api.GET("/rooms/:id", h.Reference.Room)
	api.GET("/rooms/:id/analytics", h.Reference.RoomAnalytics)
	api.GET("/subjects", h.Reference.Subjects)
	api.GET("/semesters", h.Reference.Semesters)

	api.POST("/reports", h.Report.Submit)
	api.GET("/reports", h.Report.List)
}
