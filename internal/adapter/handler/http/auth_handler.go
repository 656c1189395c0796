package http

import (
	"net/http"
	"time"

	domainerrors "github.com/wekeepgrowing/semo-authn/internal/domain/errors"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/dto"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email        string `json:"email" form:"email"`
	Password     string `json:"password" form:"password"`
	CaptchaToken string `json:"captcha_token" form:"captcha_token"`
}

type TwoFactorLoginRequest struct {
	ChallengeID string `json:"challenge_id" form:"challenge_id"`
	Code        string `json:"code" form:"code"`
}

type RecoveryRequest struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	RecoveryKey string `json:"recovery_key" form:"recovery_key"`
}

type DeviceResponse struct {
	Fingerprint    string `json:"fingerprint"`
	IsNewIP        bool   `json:"is_new_ip"`
	IsNewUserAgent bool   `json:"is_new_user_agent"`
	IsNewDevice    bool   `json:"is_new_device"`
	Trusted        bool   `json:"trusted"`
}

type PasswordWarningResponse struct {
	Days    int    `json:"days"`
	Message string `json:"message"`
}

type AuthResponse struct {
	Success           bool                     `json:"success"`
	RequiresTwoFactor bool                     `json:"requires_two_factor,omitempty"`
	UserID            string                   `json:"user_id"`
	ChallengeID       string                   `json:"challenge_id,omitempty"`
	UsedBackupCode    bool                     `json:"used_backup_code,omitempty"`
	Device            *DeviceResponse          `json:"device,omitempty"`
	PasswordWarning   *PasswordWarningResponse `json:"password_warning,omitempty"`
}

type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type AuthHandler struct {
	authUC       *usecase.AuthUseCase
	twoFactorUC  *usecase.TwoFactorUseCase
	userUC       *usecase.UserUseCase
	sessionUC    *usecase.SessionUseCase
	captchaUC    *usecase.CaptchaUseCase
	defaultEmail string
	logger       *zap.Logger
}

func NewAuthHandler(
	ucs *usecase.UseCases,
	defaultEmail string,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUC:       ucs.Auth,
		twoFactorUC:  ucs.TwoFactor,
		userUC:       ucs.User,
		sessionUC:    ucs.Session,
		captchaUC:    ucs.Captcha,
		defaultEmail: defaultEmail,
		logger:       logger,
	}
}

func toAuthResponse(result *dto.AuthResult) *AuthResponse {
	resp := &AuthResponse{
		Success:           result.Success,
		RequiresTwoFactor: result.RequiresTwoFactor,
		UserID:            result.UserID,
		ChallengeID:       result.ChallengeID,
		UsedBackupCode:    result.UsedBackupCode,
	}
	if result.Device != nil {
		resp.Device = &DeviceResponse{
			Fingerprint:    result.Device.Fingerprint,
			IsNewIP:        result.Device.IsNewIP,
			IsNewUserAgent: result.Device.IsNewUserAgent,
			IsNewDevice:    result.Device.IsNewDevice,
			Trusted:        result.Device.Trusted,
		}
	}
	if result.PasswordWarning != nil {
		resp.PasswordWarning = &PasswordWarningResponse{
			Days:    result.PasswordWarning.Days,
			Message: result.PasswordWarning.Message,
		}
	}
	return resp
}

// establishSession binds the user to the cookie session, indexes it and
// revokes every other session of the account.
func (h *AuthHandler) establishSession(c echo.Context, userID string) error {
	sess, err := middleware.GetSession(c)
	if err != nil {
		return err
	}

	sess.Values[constants.UserIDContextKey] = userID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}

	// The store assigns the session id during the first save.
	ctx := c.Request().Context()
	if err := h.sessionUC.RegisterSession(ctx, userID, sess.ID); err != nil {
		h.logger.Error("failed to index session", zap.String("user_id", userID), zap.Error(err))
	}
	if _, err := h.sessionUC.InvalidateOtherSessions(ctx, userID, sess.ID); err != nil {
		h.logger.Error("failed to invalidate other sessions", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

// Login handles the first factor of authentication.
// POST /authn/login
func (h *AuthHandler) Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email and password required"})
	}

	ctx := c.Request().Context()
	device := requestDevice(c)

	required, err := h.captchaUC.Required(ctx, req.Email, device.IP)
	if err != nil {
		return respondError(c, h.logger, err, "Authentication failed")
	}
	if required {
		passed, err := h.captchaUC.ConsumePass(ctx, req.CaptchaToken)
		if err != nil {
			return respondError(c, h.logger, err, "Authentication failed")
		}
		if !passed {
			return respondError(c, h.logger, domainerrors.ErrCaptchaRequired, "Authentication failed")
		}
	}

	result, err := h.authUC.Authenticate(ctx, dto.LoginParams{
		Email:        req.Email,
		Password:     req.Password,
		Device:       device,
		CaptchaToken: req.CaptchaToken,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Authentication failed")
	}

	// Two-factor still outstanding: report the challenge without touching
	// the session.
	if result.RequiresTwoFactor {
		return c.JSON(http.StatusOK, toAuthResponse(result))
	}

	if err := h.establishSession(c, result.UserID); err != nil {
		return respondError(c, h.logger, err, "Authentication failed")
	}

	return c.JSON(http.StatusOK, toAuthResponse(result))
}

// TwoFactorLogin finishes a login halted at the two-factor gate.
// POST /authn/login/two-factor
func (h *AuthHandler) TwoFactorLogin(c echo.Context) error {
	req := new(TwoFactorLoginRequest)
	if err := c.Bind(req); err != nil || req.ChallengeID == "" || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "challenge_id and code required"})
	}

	result, err := h.authUC.TwoFactorLogin(c.Request().Context(), req.ChallengeID, req.Code, requestDevice(c))
	if err != nil {
		return respondError(c, h.logger, err, "Authentication failed")
	}

	if err := h.establishSession(c, result.UserID); err != nil {
		return respondError(c, h.logger, err, "Authentication failed")
	}

	return c.JSON(http.StatusOK, toAuthResponse(result))
}

// Logout destroys the current session. The audit entry is only written when
// a user was actually signed in.
// POST /authn/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := middleware.GetSession(c)
	if err != nil {
		middleware.ResetSessionCookie(c)
		return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
	}

	ctx := c.Request().Context()
	if userID, ok := sess.Values[constants.UserIDContextKey].(string); ok && userID != "" {
		h.authUC.Logout(ctx, userID, requestDevice(c))
		if err := h.sessionUC.DropSession(ctx, userID, sess.ID); err != nil {
			h.logger.Warn("failed to drop session from index", zap.String("user_id", userID), zap.Error(err))
		}
	}

	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		h.logger.Warn("failed to destroy session", zap.Error(err))
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the authenticated user.
// GET /authn/me
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.userUC.Get(c.Request().Context(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load user")
	}

	return c.JSON(http.StatusOK, UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		TwoFactorEnabled: user.TOTPEnabled,
		LastLoginAt:      user.LastLoginAt,
		CreatedAt:        user.CreatedAt,
	})
}

// Recovery disables two-factor through the emergency recovery key. The
// response is identical for every failure mode.
// POST /authn/recovery
func (h *AuthHandler) Recovery(c echo.Context) error {
	req := new(RecoveryRequest)
	if err := c.Bind(req); err != nil || req.Email == "" || req.Password == "" || req.RecoveryKey == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email, password and recovery_key required"})
	}

	_, err := h.twoFactorUC.EmergencyRecovery(c.Request().Context(), req.Email, req.Password, req.RecoveryKey, requestDevice(c))
	if err != nil {
		return respondError(c, h.logger, err, "Recovery failed")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Two-factor authentication has been disabled. Log in with your password.",
	})
}

// SetupStatus reports whether the default account has finished its initial
// password setup.
// GET /authn/setup/status
func (h *AuthHandler) SetupStatus(c echo.Context) error {
	configured, err := h.userUC.PasswordConfigured(c.Request().Context(), h.defaultEmail)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to verify setup status")
	}

	return c.JSON(http.StatusOK, map[string]bool{"password_configured": configured})
}
