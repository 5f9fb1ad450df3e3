package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/presence-api/internal/service"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
	"github.com/edupulse/presence-api/pkg/response"
)

// OccurrenceHandler serves schedule views and the attendance token lifecycle.
type OccurrenceHandler struct {
	occurrences *service.OccurrenceService
	tokens      *service.TokenService
}

// NewOccurrenceHandler constructs handler.
func NewOccurrenceHandler(occurrences *service.OccurrenceService, tokens *service.TokenService) *OccurrenceHandler {
	return &OccurrenceHandler{occurrences: occurrences, tokens: tokens}
}

// Get godoc
// @Summary Fetch one class occurrence
// @Tags Occurrences
// @Produce json
// @Param id path string true "Occurrence ID"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id} [get]
func (h *OccurrenceHandler) Get(c *gin.Context) {
	occ, err := h.occurrences.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occ, nil)
}

// IssueToken godoc
// @Summary Issue a fresh attendance token for an occurrence
// @Tags Occurrences
// @Produce json
// @Param id path string true "Occurrence ID"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/token [post]
func (h *OccurrenceHandler) IssueToken(c *gin.Context) {
	token, err := h.tokens.Issue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, token, nil)
}

func parseDateQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

// ProfessorSchedule godoc
// @Summary Professor occurrences for a day, week or month
// @Tags Occurrences
// @Produce json
// @Param id path string true "Professor ID"
// @Param range query string false "day, week or month" default(day)
// @Param date query string false "Anchor date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /professors/{id}/occurrences [get]
func (h *OccurrenceHandler) ProfessorSchedule(c *gin.Context) {
	date, err := parseDateQuery(c)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	professorID := c.Param("id")
	var rows interface{}
	switch c.DefaultQuery("range", "day") {
	case "day":
		rows, err = h.occurrences.ForProfessorOnDate(c.Request.Context(), professorID, date)
	case "week":
		rows, err = h.occurrences.ForProfessorWeek(c.Request.Context(), professorID, date)
	case "month":
		rows, err = h.occurrences.ForProfessorMonth(c.Request.Context(), professorID, date)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "range must be day, week or month"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ActiveForStudent godoc
// @Summary Occurrences a student can attend right now
// @Tags Occurrences
// @Produce json
// @Param index path string true "Student index"
// @Success 200 {object} response.Envelope
// @Router /students/{index}/occurrences/active [get]
func (h *OccurrenceHandler) ActiveForStudent(c *gin.Context) {
	rows, err := h.occurrences.ActiveForStudent(c.Request.Context(), c.Param("index"), time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
