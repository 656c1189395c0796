package usecase_test

import (
	"context"
	"strings"
	"testing"

	domainerrors "github.com/wekeepgrowing/semo-authn/internal/domain/errors"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newCaptchaFixture(enabled bool) (*MockCacheRepository, *MockAuditLogRepository, *usecase.CaptchaUseCase) {
	logger := zap.NewNop()
	cacheRepo := new(MockCacheRepository)
	auditRepo := new(MockAuditLogRepository)
	auditUC := usecase.NewAuditLogUseCase(auditRepo, logger)
	return cacheRepo, auditRepo, usecase.NewCaptchaUseCase(cacheRepo, auditUC, enabled, logger)
}

func TestCaptchaUseCase_Required(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled gate never requires", func(t *testing.T) {
		_, auditRepo, uc := newCaptchaFixture(false)

		required, err := uc.Required(ctx, testEmail, testDevice.IP)

		assert.NoError(t, err)
		assert.False(t, required)
		auditRepo.AssertNotCalled(t, "CountFailuresSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("engages at the failure threshold", func(t *testing.T) {
		_, auditRepo, uc := newCaptchaFixture(true)
		auditRepo.On("CountFailuresSince", ctx, testEmail, testDevice.IP, mock.Anything).Return(int64(3), nil)

		required, err := uc.Required(ctx, testEmail, testDevice.IP)

		assert.NoError(t, err)
		assert.True(t, required)
	})

	t.Run("stays open below the threshold", func(t *testing.T) {
		_, auditRepo, uc := newCaptchaFixture(true)
		auditRepo.On("CountFailuresSince", ctx, testEmail, testDevice.IP, mock.Anything).Return(int64(2), nil)

		required, err := uc.Required(ctx, testEmail, testDevice.IP)

		assert.NoError(t, err)
		assert.False(t, required)
	})
}

func TestCaptchaUseCase_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("issues an image challenge and stores the hashed answer", func(t *testing.T) {
		cacheRepo, _, uc := newCaptchaFixture(true)

		var storedKey, storedValue string
		cacheRepo.On("Set", ctx, mock.Anything, mock.Anything, constants.CaptchaChallengeTTL).
			Run(func(args mock.Arguments) {
				storedKey = args.String(1)
				storedValue = args.String(2)
			}).Return(nil)

		challenge, err := uc.Generate(ctx)

		assert.NoError(t, err)
		assert.NotEmpty(t, challenge.ID)
		assert.True(t, strings.HasPrefix(challenge.Image, "data:image/png;base64,"))
		assert.Equal(t, constants.CaptchaChallengePrefix+challenge.ID, storedKey)
		// hash : attempts : expiry — never the answer itself
		assert.Len(t, strings.Split(storedValue, ":"), 3)
	})
}

func TestCaptchaUseCase_ConsumePass(t *testing.T) {
	ctx := context.Background()

	t.Run("pass token works exactly once", func(t *testing.T) {
		cacheRepo, _, uc := newCaptchaFixture(true)
		cacheRepo.On("GetDel", ctx, constants.CaptchaPassPrefix+"token-1").Return("1", nil).Once()
		cacheRepo.On("GetDel", ctx, constants.CaptchaPassPrefix+"token-1").Return("", nil).Once()

		first, err := uc.ConsumePass(ctx, "token-1")
		assert.NoError(t, err)
		assert.True(t, first)

		second, err := uc.ConsumePass(ctx, "token-1")
		assert.NoError(t, err)
		assert.False(t, second)
	})

	t.Run("empty token never passes", func(t *testing.T) {
		cacheRepo, _, uc := newCaptchaFixture(true)

		passed, err := uc.ConsumePass(ctx, "")

		assert.NoError(t, err)
		assert.False(t, passed)
		cacheRepo.AssertNotCalled(t, "GetDel", mock.Anything, mock.Anything)
	})
}

func TestCaptchaUseCase_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown challenge fails generically", func(t *testing.T) {
		cacheRepo, _, uc := newCaptchaFixture(true)
		cacheRepo.On("GetDel", ctx, constants.CaptchaChallengePrefix+"missing").Return("", nil)

		_, err := uc.Verify(ctx, "missing", "ABC234")

		assert.ErrorIs(t, err, domainerrors.ErrInvalidCaptcha)
	})
}
