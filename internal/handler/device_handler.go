package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/presence-api/internal/service"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
	"github.com/edupulse/presence-api/pkg/response"
)

// DeviceHandler exposes device binding endpoints.
type DeviceHandler struct {
	devices *service.DeviceService
}

// NewDeviceHandler constructs handler.
func NewDeviceHandler(devices *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

// RequestLink godoc
// @Summary Request binding a device to a student
// @Tags Devices
// @Accept json
// @Produce json
// @Param payload body service.LinkDeviceRequest true "Link request"
// @Success 200 {object} response.Envelope
// @Router /devices/link [post]
func (h *DeviceHandler) RequestLink(c *gin.Context) {
	var req service.LinkDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.devices.RequestLink(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// BoundDevice godoc
// @Summary Fetch the device currently bound to a student
// @Tags Devices
// @Produce json
// @Param index path string true "Student index"
// @Success 200 {object} response.Envelope
// @Router /students/{index}/device [get]
func (h *DeviceHandler) BoundDevice(c *gin.Context) {
	device, err := h.devices.BoundDevice(c.Request.Context(), c.Param("index"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, device, nil)
}

// ListPending godoc
// @Summary List open device link requests
// @Tags Devices
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /devices/link/pending [get]
func (h *DeviceHandler) ListPending(c *gin.Context) {
	rows, err := h.devices.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
