package http

import (
	"errors"

	domainerrors "github.com/wekeepgrowing/semo-authn/internal/domain/errors"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/dto"
	apperrors "github.com/wekeepgrowing/semo-authn/pkg/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// errorCode maps a domain error to a transport error code. Unknown errors
// fall through to INTERNAL so infrastructure details never reach a client.
func errorCode(err error) string {
	switch {
	case domainerrors.IsPasswordPolicyError(err),
		errors.Is(err, domainerrors.ErrInvalidCaptcha):
		return apperrors.ErrInvalidArgument
	case errors.Is(err, domainerrors.ErrInvalidCredentials),
		errors.Is(err, domainerrors.ErrInvalidTwoFactorCode),
		errors.Is(err, domainerrors.ErrChallengeExpired),
		errors.Is(err, domainerrors.ErrInvalidRecovery):
		return apperrors.ErrUnauthenticated
	case errors.Is(err, domainerrors.ErrAccountLocked):
		return apperrors.ErrLocked
	case errors.Is(err, domainerrors.ErrPasswordNotConfigured):
		return apperrors.ErrSetupRequired
	case errors.Is(err, domainerrors.ErrTwoFactorAlreadyEnabled),
		errors.Is(err, domainerrors.ErrTwoFactorNotEnabled),
		errors.Is(err, domainerrors.ErrTwoFactorNotInitiated):
		return apperrors.ErrConflict
	case errors.Is(err, domainerrors.ErrUserNotFound),
		errors.Is(err, domainerrors.ErrDeviceNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, domainerrors.ErrCaptchaRequired):
		return apperrors.ErrTooManyRequests
	default:
		return apperrors.ErrInternal
	}
}

// respondError writes the JSON error for a failed operation. Domain errors
// carry client-safe messages; anything else is logged and collapsed into
// the fallback message at 500.
func respondError(c echo.Context, logger *zap.Logger, err error, fallback string) error {
	code := errorCode(err)
	message := err.Error()
	if code == apperrors.ErrInternal {
		apperrors.LogError(logger, err, fallback)
		message = fallback
	}

	return c.JSON(apperrors.ToHTTPStatus(code), map[string]string{
		"error": message,
		"code":  code,
	})
}

// requestDevice captures the request origin for fingerprinting and audit.
func requestDevice(c echo.Context) dto.DeviceInfo {
	return dto.DeviceInfo{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
