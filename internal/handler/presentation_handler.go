package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/presence-api/internal/service"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
	"github.com/edupulse/presence-api/pkg/response"
)

// PresentationHandler manages the per-occurrence slide deck link cache.
type PresentationHandler struct {
	presentations *service.PresentationService
}

// NewPresentationHandler constructs handler.
func NewPresentationHandler(presentations *service.PresentationService) *PresentationHandler {
	return &PresentationHandler{presentations: presentations}
}

type publishPresentationRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// Publish godoc
// @Summary Publish the slide deck link for an occurrence
// @Tags Presentations
// @Accept json
// @Produce json
// @Param id path string true "Occurrence ID"
// @Param payload body publishPresentationRequest true "Link payload"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/presentation [put]
func (h *PresentationHandler) Publish(c *gin.Context) {
	var req publishPresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	link, err := h.presentations.Publish(c.Request.Context(), c.Param("id"), req.URL, uploaderFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Get godoc
// @Summary Fetch the current slide deck link for an occurrence
// @Tags Presentations
// @Produce json
// @Param id path string true "Occurrence ID"
// @Success 200 {object} response.Envelope
// @Router /occurrences/{id}/presentation [get]
func (h *PresentationHandler) Get(c *gin.Context) {
	link, err := h.presentations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Remove godoc
// @Summary Drop the slide deck link for an occurrence
// @Tags Presentations
// @Param id path string true "Occurrence ID"
// @Success 204
// @Router /occurrences/{id}/presentation [delete]
func (h *PresentationHandler) Remove(c *gin.Context) {
	if err := h.presentations.Remove(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
