package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/presence-api/internal/service"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
	"github.com/edupulse/presence-api/pkg/response"
)

// ReportHandler exposes problem reports and attendance sheet exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Submit godoc
// @Summary Submit a problem report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body service.SubmitReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Submit(c *gin.Context) {
	var req service.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	report, err := h.reports.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// List godoc
// @Summary List recent problem reports
// @Tags Reports
// @Produce json
// @Param limit query int false "Max rows" default(100)
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	reports, err := h.reports.List(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// ExportSheet godoc
// @Summary Export the attendance sheet of one occurrence
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Occurrence ID"
// @Param format query string false "csv or pdf" default(csv)
// @Param link query bool false "Return a signed download link instead of the file"
// @Success 200 {file} file
// @Router /occurrences/{id}/attendance/export [get]
func (h *ReportHandler) ExportSheet(c *gin.Context) {
	occurrenceID := c.Param("id")
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	if c.Query("link") == "true" {
		link, err := h.reports.ArchiveSheet(c.Request.Context(), occurrenceID, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, link, nil)
		return
	}

	payload, contentType, err := h.reports.AttendanceSheet(c.Request.Context(), occurrenceID, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.%s", occurrenceID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// Download godoc
// @Summary Download an archived attendance sheet
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /exports/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	file, contentType, err := h.reports.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stat sheet"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name()))
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
