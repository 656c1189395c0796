package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/config"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-authn/pkg/logger"

	"github.com/boj/redistore"
	"github.com/gomodule/redigo/redis"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	e     *echo.Echo
	store *redistore.RediStore
	cfg   *config.Config
	log   *zap.Logger
}

// NewServer builds the Echo server: session store, global middleware and
// every route. defaultUserID is the bootstrap account resolved at startup.
func NewServer(cfg *config.Config, ucs *usecase.UseCases, defaultUserID string, log *zap.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = echo.ExtractIPFromRealIPHeader()
	logger.WithEchoLogger(e, log)

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(logger.NewEchoRequestLogger(log))

	store, err := newSessionStore(cfg, log)
	if err != nil {
		return nil, err
	}
	e.Use(session.Middleware(store))
	e.Use(middleware.Recover())

	registerRoutes(e, cfg, ucs, defaultUserID, log)

	return &Server{e: e, store: store, cfg: cfg, log: log}, nil
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	return s.e.Start(addr)
}

// Shutdown gracefully stops the HTTP server and closes the session store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.e.Shutdown(ctx)
	if closeErr := s.store.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// newSessionStore creates the Redis-backed cookie session store. Its key
// prefix must stay aligned with constants.SessionKeyPrefix so that
// single-session enforcement can delete session records directly.
func newSessionStore(cfg *config.Config, log *zap.Logger) (*redistore.RediStore, error) {
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("session secret is not configured")
	}

	poolSize := cfg.Session.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	pool := &redis.Pool{
		MaxIdle:     poolSize,
		MaxActive:   0,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			var options []redis.DialOption
			if cfg.Redis.Password != "" {
				options = append(options, redis.DialPassword(cfg.Redis.Password))
			}
			if cfg.Redis.DB != 0 {
				options = append(options, redis.DialDatabase(cfg.Redis.DB))
			}
			if cfg.Redis.UseTLS {
				options = append(options,
					redis.DialUseTLS(true),
					redis.DialTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}),
				)
			}
			return redis.Dial("tcp", cfg.Redis.Addr(), options...)
		},
	}

	store, err := redistore.NewRediStoreWithPool(pool, []byte(cfg.Session.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	store.SetKeyPrefix(constants.SessionKeyPrefix)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
	}

	log.Info("Session store initialized",
		zap.String("redisAddress", cfg.Redis.Addr()),
		zap.Int("maxAge", cfg.Session.MaxAge),
		zap.Bool("secure", cfg.Session.Secure),
	)

	return store, nil
}
