package http

import (
	"net/http"

	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type TwoFactorCodeRequest struct {
	Code string `json:"code" form:"code"`
}

type TwoFactorPasswordRequest struct {
	Password string `json:"password" form:"password"`
}

type TwoFactorSetupResponse struct {
	Secret      string   `json:"secret"`
	OTPAuthURL  string   `json:"otpauth_url"`
	QRCodeImage string   `json:"qr_code_image"`
	BackupCodes []string `json:"backup_codes"`
	RecoveryKey string   `json:"recovery_key"`
}

type TwoFactorStatusResponse struct {
	Enabled              bool `json:"enabled"`
	BackupCodesRemaining int  `json:"backup_codes_remaining"`
}

type TwoFactorHandler struct {
	twoFactorUC *usecase.TwoFactorUseCase
	logger      *zap.Logger
}

func NewTwoFactorHandler(ucs *usecase.UseCases, logger *zap.Logger) *TwoFactorHandler {
	return &TwoFactorHandler{
		twoFactorUC: ucs.TwoFactor,
		logger:      logger,
	}
}

// Status reports the caller's two-factor state.
// GET /two-factor/status
func (h *TwoFactorHandler) Status(c echo.Context) error {
	status, err := h.twoFactorUC.Status(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load two-factor status")
	}

	return c.JSON(http.StatusOK, TwoFactorStatusResponse{
		Enabled:              status.Enabled,
		BackupCodesRemaining: status.BackupCodesRemaining,
	})
}

// Setup initiates two-factor enrollment and returns the provisioning
// material. The secret, backup codes and recovery key appear in this
// response only; they are stored hashed and cannot be shown again.
// POST /two-factor/setup
func (h *TwoFactorHandler) Setup(c echo.Context) error {
	result, err := h.twoFactorUC.Setup(c.Request().Context(), middleware.CurrentUserID(c), requestDevice(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to start two-factor setup")
	}

	return c.JSON(http.StatusOK, TwoFactorSetupResponse{
		Secret:      result.Secret,
		OTPAuthURL:  result.OTPAuthURL,
		QRCodeImage: result.QRCodeImage,
		BackupCodes: result.BackupCodes,
		RecoveryKey: result.RecoveryKey,
	})
}

// Verify confirms the authenticator code and enables two-factor.
// POST /two-factor/verify
func (h *TwoFactorHandler) Verify(c echo.Context) error {
	req := new(TwoFactorCodeRequest)
	if err := c.Bind(req); err != nil || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "code required"})
	}

	if err := h.twoFactorUC.VerifyAndEnable(c.Request().Context(), middleware.CurrentUserID(c), req.Code, requestDevice(c)); err != nil {
		return respondError(c, h.logger, err, "Failed to verify two-factor code")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Two-factor authentication enabled",
	})
}

// Disable turns two-factor off after re-verifying the password.
// POST /two-factor/disable
func (h *TwoFactorHandler) Disable(c echo.Context) error {
	req := new(TwoFactorPasswordRequest)
	if err := c.Bind(req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "password required"})
	}

	if err := h.twoFactorUC.Disable(c.Request().Context(), middleware.CurrentUserID(c), req.Password, requestDevice(c)); err != nil {
		return respondError(c, h.logger, err, "Failed to disable two-factor authentication")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Two-factor authentication disabled",
	})
}

// RegenerateBackupCodes replaces every stored backup code after re-verifying
// the password. The new plaintext codes appear in this response only.
// POST /two-factor/backup-codes
func (h *TwoFactorHandler) RegenerateBackupCodes(c echo.Context) error {
	req := new(TwoFactorPasswordRequest)
	if err := c.Bind(req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "password required"})
	}

	codes, err := h.twoFactorUC.RegenerateBackupCodes(c.Request().Context(), middleware.CurrentUserID(c), req.Password, requestDevice(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to regenerate backup codes")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"backup_codes": codes,
	})
}
