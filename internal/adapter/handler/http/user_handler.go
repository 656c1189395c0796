package http

import (
	"net/http"

	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SetPasswordRequest struct {
	Password string `json:"password" form:"password"`
}

type UserHandler struct {
	userUC *usecase.UserUseCase
	logger *zap.Logger
}

func NewUserHandler(ucs *usecase.UseCases, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userUC: ucs.User,
		logger: logger,
	}
}

// SetPassword stores a new password for the caller. Policy violations name
// the rule that failed; nothing is written on failure. This route stays
// reachable during initial setup so a fresh instance can store its first
// password.
// PUT /users/password
func (h *UserHandler) SetPassword(c echo.Context) error {
	req := new(SetPasswordRequest)
	if err := c.Bind(req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "password required"})
	}

	if err := h.userUC.SetPassword(c.Request().Context(), middleware.CurrentUserID(c), req.Password, requestDevice(c)); err != nil {
		return respondError(c, h.logger, err, "Failed to update password")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
}
