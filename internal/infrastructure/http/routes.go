package http

import (
	"net/http"
	"time"

	handler "github.com/wekeepgrowing/semo-authn/internal/adapter/handler/http"
	"github.com/wekeepgrowing/semo-authn/internal/config"
	authmw "github.com/wekeepgrowing/semo-authn/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// registerRoutes wires every handler. Credential endpoints get a per-source
// rate limit on top of the account lockout policy. defaultUserID is the
// bootstrap account resolved at startup; it is the principal used while
// authentication is not required.
func registerRoutes(e *echo.Echo, cfg *config.Config, ucs *usecase.UseCases, defaultUserID string, log *zap.Logger) {
	authHandler := handler.NewAuthHandler(ucs, cfg.Security.DefaultUserEmail, log)
	twoFactorHandler := handler.NewTwoFactorHandler(ucs, log)
	userHandler := handler.NewUserHandler(ucs, log)
	deviceHandler := handler.NewDeviceHandler(ucs, log)
	auditHandler := handler.NewAuditHandler(ucs, log)
	captchaHandler := handler.NewCaptchaHandler(ucs, log)

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello, from Authn Server!")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	loginLimiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      5,
				Burst:     10,
				ExpiresIn: 1 * time.Hour,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			if email := ctx.FormValue("email"); email != "" {
				id += ":" + email
			}
			return id, nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return tooManyRequests(ctx)
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			return tooManyRequests(ctx)
		},
	})

	requireAuth := authmw.RequireAuth(cfg.Security.AuthRequired, defaultUserID)
	checkSetup := authmw.CheckInitialSetup(ucs.User, cfg.Security.DefaultUserEmail, log)

	authGroup := e.Group("/authn", authmw.Session)
	{
		authGroup.POST("/login", authHandler.Login, loginLimiter)
		authGroup.POST("/login/two-factor", authHandler.TwoFactorLogin, loginLimiter)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/recovery", authHandler.Recovery, loginLimiter)
		authGroup.GET("/me", authHandler.Me, requireAuth)
		authGroup.GET("/setup/status", authHandler.SetupStatus)
	}

	userGroup := e.Group("/users", authmw.Session, requireAuth, checkSetup)
	{
		userGroup.PUT("/password", userHandler.SetPassword)
	}

	twoFactorGroup := e.Group("/two-factor", authmw.Session, requireAuth, checkSetup)
	{
		twoFactorGroup.GET("/status", twoFactorHandler.Status)
		twoFactorGroup.POST("/setup", twoFactorHandler.Setup)
		twoFactorGroup.POST("/verify", twoFactorHandler.Verify)
		twoFactorGroup.POST("/disable", twoFactorHandler.Disable)
		twoFactorGroup.POST("/backup-codes", twoFactorHandler.RegenerateBackupCodes)
	}

	deviceGroup := e.Group("/trusted-devices", authmw.Session, requireAuth, checkSetup)
	{
		deviceGroup.GET("", deviceHandler.List)
		deviceGroup.POST("", deviceHandler.TrustCurrent)
		deviceGroup.DELETE("/:id", deviceHandler.Remove)
	}

	auditGroup := e.Group("/audit", authmw.Session, requireAuth, checkSetup)
	{
		auditGroup.GET("/logs", auditHandler.List)
	}

	if ucs.Captcha.Enabled() {
		captchaGroup := e.Group("/captcha")
		{
			captchaGroup.POST("/generate", captchaHandler.Generate)
			captchaGroup.POST("/verify", captchaHandler.Verify)
		}
	}
}

func tooManyRequests(ctx echo.Context) error {
	return ctx.JSON(http.StatusTooManyRequests, map[string]string{
		"error": "Too many requests. Please try again later.",
	})
}
