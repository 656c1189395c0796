package middleware

import (
	"net/http"

	"github.com/wekeepgrowing/semo-authn/internal/usecase"
	apperrors "github.com/wekeepgrowing/semo-authn/pkg/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Routes a freshly provisioned instance may reach before its first password
// exists: setting that password and reading setup or two-factor status.
var setupExemptRoutes = map[string]bool{
	"PUT /users/password":     true,
	"GET /authn/setup/status": true,
	"GET /two-factor/status":  true,
}

// CheckInitialSetup blocks protected routes until the default account has a
// password, so a new instance cannot be used before it is secured. Only the
// exempt routes pass, which is exactly enough to store the first password.
func CheckInitialSetup(userUC *usecase.UserUseCase, defaultEmail string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if setupExemptRoutes[c.Request().Method+" "+c.Path()] {
				return next(c)
			}

			configured, err := userUC.PasswordConfigured(c.Request().Context(), defaultEmail)
			if err != nil {
				logger.Error("failed to check initial setup state", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "Failed to verify setup status",
					"code":  apperrors.ErrInternal,
				})
			}

			if !configured {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "Initial setup required. Set a password to continue.",
					"code":  apperrors.ErrSetupRequired,
				})
			}

			return next(c)
		}
	}
}
