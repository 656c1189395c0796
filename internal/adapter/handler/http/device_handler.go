package http

import (
	"net/http"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type TrustedDeviceResponse struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	CreatedAt   time.Time `json:"created_at"`
}

type DeviceHandler struct {
	deviceUC *usecase.DeviceUseCase
	logger   *zap.Logger
}

func NewDeviceHandler(ucs *usecase.UseCases, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		deviceUC: ucs.Device,
		logger:   logger,
	}
}

// List returns the caller's trusted devices.
// GET /trusted-devices
func (h *DeviceHandler) List(c echo.Context) error {
	devices, err := h.deviceUC.List(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list trusted devices")
	}

	resp := make([]TrustedDeviceResponse, 0, len(devices))
	for _, d := range devices {
		resp = append(resp, TrustedDeviceResponse{
			ID:          d.ID,
			Fingerprint: d.Fingerprint,
			IPAddress:   d.IPAddress,
			UserAgent:   d.UserAgent,
			CreatedAt:   d.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"devices": resp})
}

// TrustCurrent adds the request's origin to the caller's trusted devices, so
// future logins from it skip the new-device alert.
// POST /trusted-devices
func (h *DeviceHandler) TrustCurrent(c echo.Context) error {
	device, err := h.deviceUC.TrustCurrentDevice(c.Request().Context(), middleware.CurrentUserID(c), requestDevice(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to trust device")
	}

	return c.JSON(http.StatusOK, TrustedDeviceResponse{
		ID:          device.ID,
		Fingerprint: device.Fingerprint,
		IPAddress:   device.IPAddress,
		UserAgent:   device.UserAgent,
		CreatedAt:   device.CreatedAt,
	})
}

// Remove deletes one of the caller's trusted devices.
// DELETE /trusted-devices/:id
func (h *DeviceHandler) Remove(c echo.Context) error {
	deviceID := c.Param("id")
	if deviceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "device id required"})
	}

	if err := h.deviceUC.RemoveTrustedDevice(c.Request().Context(), middleware.CurrentUserID(c), deviceID); err != nil {
		return respondError(c, h.logger, err, "Failed to remove trusted device")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Trusted device removed"})
}
