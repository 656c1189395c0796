package middleware

import (
	"net/http"

	"github.com/wekeepgrowing/semo-authn/internal/usecase/constants"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const sessionContextKey = "session_data"

// Session loads the cookie session into the request context. A session that
// cannot be decoded (rotated secret, corrupt cookie) resets the client's
// cookie instead of failing every subsequent request.
func Session(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(constants.SessionName, c)
		if err != nil {
			ResetSessionCookie(c)
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "Session error. Please log in again.",
			})
		}

		c.Set(sessionContextKey, sess)
		return next(c)
	}
}

// GetSession returns the request's session, loading it directly when the
// session middleware did not run.
func GetSession(c echo.Context) (*sessions.Session, error) {
	sessionData := c.Get(sessionContextKey)
	if sessionData == nil {
		return session.Get(constants.SessionName, c)
	}

	sess, ok := sessionData.(*sessions.Session)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "invalid session type in context")
	}
	return sess, nil
}

// ResetSessionCookie expires the client's session cookie immediately.
func ResetSessionCookie(c echo.Context) {
	cookie := new(http.Cookie)
	cookie.Name = constants.SessionName
	cookie.Value = ""
	cookie.Path = "/"
	cookie.MaxAge = -1
	cookie.HttpOnly = true
	c.SetCookie(cookie)
}
