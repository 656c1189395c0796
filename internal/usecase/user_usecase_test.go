package usecase_test

import (
	"context"
	"testing"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/semo-authn/internal/domain/errors"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newUserUseCase(userRepo *MockUserRepository, auditRepo *MockAuditLogRepository) *usecase.UserUseCase {
	logger := zap.NewNop()
	auditUC := usecase.NewAuditLogUseCase(auditRepo, logger)
	return usecase.NewUserUseCase(userRepo, fakeHasher{}, auditUC, logger)
}

func TestUserUseCase_SetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("policy violations name the broken rule and write nothing", func(t *testing.T) {
		cases := []struct {
			name     string
			password string
			message  string
		}{
			{"too short", "short1!", "at least 12 characters"},
			{"missing uppercase", "alllowercase1!", "uppercase"},
			{"missing lowercase", "ALLUPPERCASE1!", "lowercase"},
			{"missing digit", "NoDigitsHere!!!", "digit"},
			{"missing symbol", "NoSymbolsHere123", "special character"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				userRepo := new(MockUserRepository)
				auditRepo := new(MockAuditLogRepository)
				uc := newUserUseCase(userRepo, auditRepo)

				err := uc.SetPassword(ctx, testUserID, tc.password, testDevice)

				assert.True(t, domainerrors.IsPasswordPolicyError(err))
				assert.Contains(t, err.Error(), tc.message)
				userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
				userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("valid password is hashed and stamped", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		auditRepo := new(MockAuditLogRepository)
		auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		uc := newUserUseCase(userRepo, auditRepo)

		user := testUser()
		user.PasswordHash = nil
		user.PasswordChangedAt = nil
		userRepo.On("FindByID", ctx, testUserID).Return(user, nil)
		userRepo.On("Update", ctx, user).Return(nil)

		err := uc.SetPassword(ctx, testUserID, "Str0ng!Passw0rd", testDevice)

		assert.NoError(t, err)
		if assert.NotNil(t, user.PasswordHash) {
			assert.Equal(t, "hashed:Str0ng!Passw0rd", *user.PasswordHash)
		}
		assert.NotNil(t, user.PasswordChangedAt)
		assert.Contains(t, auditRepo.Actions(), entity.AuditActionPasswordChanged)
	})

	t.Run("unknown user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		auditRepo := new(MockAuditLogRepository)
		uc := newUserUseCase(userRepo, auditRepo)
		userRepo.On("FindByID", ctx, "missing").Return(nil, nil)

		err := uc.SetPassword(ctx, "missing", "Str0ng!Passw0rd", testDevice)

		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})
}

func TestUserUseCase_PasswordConfigured(t *testing.T) {
	ctx := context.Background()

	t.Run("true once a hash is stored", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		uc := newUserUseCase(userRepo, new(MockAuditLogRepository))
		userRepo.On("FindByEmail", ctx, testEmail).Return(testUser(), nil)

		configured, err := uc.PasswordConfigured(ctx, testEmail)

		assert.NoError(t, err)
		assert.True(t, configured)
	})

	t.Run("false for a fresh bootstrap account", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		uc := newUserUseCase(userRepo, new(MockAuditLogRepository))
		user := testUser()
		user.PasswordHash = nil
		userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)

		configured, err := uc.PasswordConfigured(ctx, testEmail)

		assert.NoError(t, err)
		assert.False(t, configured)
	})

	t.Run("false for an unknown email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		uc := newUserUseCase(userRepo, new(MockAuditLogRepository))
		userRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)

		configured, err := uc.PasswordConfigured(ctx, "ghost@example.com")

		assert.NoError(t, err)
		assert.False(t, configured)
	})
}
