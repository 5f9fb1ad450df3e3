package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/presence-api/internal/models"
	"github.com/edupulse/presence-api/internal/service"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
	"github.com/edupulse/presence-api/pkg/response"
)

// AttendanceHandler exposes the scan-and-verify pipeline and attendance reads.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Register godoc
// @Summary Register attendance with proximity verification
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RegisterAttendanceRequest true "Scan payload"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Register(c *gin.Context) {
	var req service.RegisterAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.attendance.RegisterAttendance(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// LogDetection godoc
// @Summary Record a single proximity detection for auditing
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.ProximityDetection true "Beacon detection"
// @Success 202 {object} response.Envelope
// @Router /proximity/detections [post]
func (h *AttendanceHandler) LogDetection(c *gin.Context) {
	var detection models.ProximityDetection
	if err := c.ShouldBindJSON(&detection); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.attendance.LogDetection(c.Request.Context(), detection); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"logged": true}, nil)
}

type confirmAttendanceRequest struct {
	ProximityLevel models.ProximityLevel `json:"proximity_level" binding:"required"`
}

// Confirm godoc
// @Summary Manually confirm a pending attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance record ID"
// @Param payload body confirmAttendanceRequest true "Confirmation payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id}/confirm [post]
func (h *AttendanceHandler) Confirm(c *gin.Context) {
	var req confirmAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	record, err := h.attendance.ConfirmAttendance(c.Request.Context(), c.Param("id"), req.ProximityLevel)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Get godoc
// @Summary Fetch one attendance record
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance record ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [get]
func (h *AttendanceHandler) Get(c *gin.Context) {
	record, err := h.attendance.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// History godoc
// @Summary Student attendance history
// @Tags Attendance
// @Produce json
// @Param index path string true "Student index"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /students/{index}/attendance [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD"))
		return
	}
	rows, err := h.attendance.History(c.Request.Context(), c.Param("index"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Summary godoc
// @Summary Student attendance summary for one semester
// @Tags Attendance
// @Produce json
// @Param index path string true "Student index"
// @Param semester query string true "Semester code"
// @Success 200 {object} response.Envelope
// @Router /students/{index}/attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	semester := c.Query("semester")
	if semester == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester required"))
		return
	}
	summary, err := h.attendance.Summary(c.Request.Context(), c.Param("index"), semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ListByOccurrence godoc
// @Summary Attendance list for one class occurrence
// @Tags Attendance
// @Produce json
// @Param id path string true "Occurrence ID"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/attendance [get]
func (h *AttendanceHandler) ListByOccurrence(c *gin.Context) {
	rows, err := h.attendance.ListByOccurrence(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
