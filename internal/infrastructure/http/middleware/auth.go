package middleware

import (
	"net/http"

	apperrors "github.com/wekeepgrowing/semo-authn/pkg/errors"

	"github.com/wekeepgrowing/semo-authn/internal/usecase/constants"

	"github.com/labstack/echo/v4"
)

// RequireAuth gates protected routes on a session that carries a user id.
// When the deployment runs with authentication disabled, every request is
// stamped with the default principal instead.
func RequireAuth(authRequired bool, defaultUserID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !authRequired {
				c.Set(constants.UserIDContextKey, defaultUserID)
				return next(c)
			}

			sess, err := GetSession(c)
			if err != nil {
				return unauthenticated(c)
			}

			userID, ok := sess.Values[constants.UserIDContextKey].(string)
			if !ok || userID == "" {
				return unauthenticated(c)
			}

			c.Set(constants.UserIDContextKey, userID)
			return next(c)
		}
	}
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error": "Authentication required",
		"code":  apperrors.ErrUnauthenticated,
	})
}

// CurrentUserID returns the user id RequireAuth stamped on the request.
func CurrentUserID(c echo.Context) string {
	userID, _ := c.Get(constants.UserIDContextKey).(string)
	return userID
}
