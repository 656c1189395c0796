package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/http/middleware"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// stubUserRepo backs the setup gate tests with a single in-memory user.
type stubUserRepo struct {
	user *entity.User
}

func (s *stubUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (s *stubUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }
func (s *stubUserRepo) UpdateLastKnownDevice(ctx context.Context, userID, ip, userAgent string) error {
	return nil
}
func (s *stubUserRepo) ReplaceBackupCodes(ctx context.Context, userID string, old, updated []string) (bool, error) {
	return true, nil
}

// stubAuditRepo drops every event.
type stubAuditRepo struct{}

func (stubAuditRepo) Create(ctx context.Context, log *entity.AuditLog) error { return nil }
func (stubAuditRepo) ListByUser(ctx context.Context, userID string, limit int) ([]entity.AuditLog, error) {
	return nil, nil
}
func (stubAuditRepo) CountFailuresSince(ctx context.Context, email, ip string, since time.Time) (int64, error) {
	return 0, nil
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, middleware.CurrentUserID(c))
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()

	t.Run("auth disabled stamps the default principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := middleware.RequireAuth(false, "default-user")(okHandler)
		err := handler(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "default-user", rec.Body.String())
	})

	t.Run("missing session is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := middleware.RequireAuth(true, "default-user")(okHandler)
		err := handler(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Authentication required")
	})
}

func TestCurrentUserID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Empty(t, middleware.CurrentUserID(c))

	c.Set("user_id", "user-42")
	assert.Equal(t, "user-42", middleware.CurrentUserID(c))
}

func TestCheckInitialSetup(t *testing.T) {
	newGate := func(user *entity.User) echo.MiddlewareFunc {
		logger := zap.NewNop()
		userUC := usecase.NewUserUseCase(&stubUserRepo{user: user}, nil, usecase.NewAuditLogUseCase(stubAuditRepo{}, logger), logger)
		return middleware.CheckInitialSetup(userUC, "admin@localhost", logger)
	}

	hash := "hashed"
	configured := &entity.User{ID: "u1", Email: "admin@localhost", PasswordHash: &hash}
	unconfigured := &entity.User{ID: "u1", Email: "admin@localhost"}

	t.Run("passes once the password is set", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/audit/logs", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/audit/logs")

		err := newGate(configured)(okHandler)(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("blocks everything else before setup", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/audit/logs", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/audit/logs")

		err := newGate(unconfigured)(okHandler)(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Initial setup required")
	})

	t.Run("setup routes stay reachable before setup", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPut, "/users/password", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/users/password")

		err := newGate(unconfigured)(okHandler)(c)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
