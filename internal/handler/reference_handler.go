package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/presence-api/internal/service"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
	"github.com/edupulse/presence-api/pkg/response"
)

// ReferenceHandler serves scheduling reference data and room analytics.
type ReferenceHandler struct {
	reference *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(reference *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{reference: reference}
}

// Rooms godoc
// @Summary List rooms
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *ReferenceHandler) Rooms(c *gin.Context) {
	rooms, err := h.reference.Rooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Room godoc
// @Summary Fetch one room
// @Tags Reference
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *ReferenceHandler) Room(c *gin.Context) {
	room, err := h.reference.Room(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Subjects godoc
// @Summary List subjects
// @Tags Reference
// @Produce json
// @Param semester query string false "Semester code"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *ReferenceHandler) Subjects(c *gin.Context) {
	subjects, err := h.reference.Subjects(c.Request.Context(), c.Query("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Semesters godoc
// @Summary List semesters
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semesters [get]
func (h *ReferenceHandler) Semesters(c *gin.Context) {
	semesters, err := h.reference.Semesters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semesters, nil)
}

// RoomAnalytics godoc
// @Summary Verification quality for one room
// @Tags Reference
// @Produce json
// @Param id path string true "Room ID"
// @Param days query int false "Lookback in days" default(30)
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/analytics [get]
func (h *ReferenceHandler) RoomAnalytics(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "days must be a positive integer"))
			return
		}
		days = parsed
	}
	from := time.Now().UTC().AddDate(0, 0, -days)

	stats, err := h.reference.RoomAnalytics(c.Request.Context(), c.Param("id"), from)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
