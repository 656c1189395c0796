package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/semo-authn/internal/domain/errors"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const (
	testUserID   = "11111111-1111-1111-1111-111111111111"
	testEmail    = "user@example.com"
	testPassword = "Str0ng!Passw0rd"
)

var testDevice = dto.DeviceInfo{IP: "203.0.113.7", UserAgent: "Mozilla/5.0"}

type authFixture struct {
	userRepo   *MockUserRepository
	deviceRepo *MockTrustedDeviceRepository
	cacheRepo  *MockCacheRepository
	auditRepo  *MockAuditLogRepository
	mailer     *fakeMailer
	authUC     *usecase.AuthUseCase
	twoFactor  *usecase.TwoFactorUseCase
}

func newAuthFixture() *authFixture {
	logger := zap.NewNop()
	f := &authFixture{
		userRepo:   new(MockUserRepository),
		deviceRepo: new(MockTrustedDeviceRepository),
		cacheRepo:  new(MockCacheRepository),
		auditRepo:  new(MockAuditLogRepository),
		mailer:     new(fakeMailer),
	}

	auditUC := usecase.NewAuditLogUseCase(f.auditRepo, logger)
	deviceUC := usecase.NewDeviceUseCase(f.userRepo, f.deviceRepo, logger)
	f.twoFactor = usecase.NewTwoFactorUseCase(f.userRepo, fakeHasher{}, auditUC, "semo-authn", logger)
	f.authUC = usecase.NewAuthUseCase(f.userRepo, f.cacheRepo, fakeHasher{}, auditUC, deviceUC, f.twoFactor, f.mailer, logger)

	f.auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	return f
}

func testUser() *entity.User {
	hash := "hashed:" + testPassword
	return &entity.User{
		ID:           testUserID,
		Email:        testEmail,
		PasswordHash: &hash,
	}
}

func (f *authFixture) expectDeviceCheck(trusted bool) {
	f.deviceRepo.On("Exists", mock.Anything, testUserID, mock.Anything, testDevice.IP, testDevice.UserAgent).Return(trusted, nil)
	f.userRepo.On("UpdateLastKnownDevice", mock.Anything, testUserID, testDevice.IP, testDevice.UserAgent).Return(nil)
}

func TestAuthUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email and wrong password return the same message", func(t *testing.T) {
		f := newAuthFixture()
		f.userRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, nil)

		_, unknownErr := f.authUC.Authenticate(ctx, dto.LoginParams{Email: "ghost@example.com", Password: testPassword, Device: testDevice})
		assert.Error(t, unknownErr)

		user := testUser()
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)
		f.userRepo.On("Update", ctx, user).Return(nil)

		_, wrongErr := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: "wrong-password", Device: testDevice})
		assert.Error(t, wrongErr)

		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})

	t.Run("failed attempt increments counter and persists", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		user.FailedLoginAttempts = 2
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)
		f.userRepo.On("Update", ctx, user).Return(nil)

		_, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: "wrong", Device: testDevice})

		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
		assert.Equal(t, 3, user.FailedLoginAttempts)
		assert.Nil(t, user.LockedUntil)
		f.userRepo.AssertCalled(t, "Update", ctx, user)
	})

	t.Run("fifth failure engages the lockout window", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		user.FailedLoginAttempts = 4
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)
		f.userRepo.On("Update", ctx, user).Return(nil)

		before := time.Now()
		_, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: "wrong", Device: testDevice})

		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
		assert.Equal(t, 5, user.FailedLoginAttempts)
		if assert.NotNil(t, user.LockedUntil) {
			expected := before.Add(entity.LockoutDuration)
			assert.WithinDuration(t, expected, *user.LockedUntil, 2*time.Second)
		}
	})

	t.Run("locked account rejects the right password without counting", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		user.FailedLoginAttempts = 5
		lockedUntil := time.Now().Add(10 * time.Minute)
		user.LockedUntil = &lockedUntil
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)

		_, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: testPassword, Device: testDevice})

		assert.ErrorIs(t, err, domainerrors.ErrAccountLocked)
		assert.Equal(t, 5, user.FailedLoginAttempts)
		f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

		if assert.Len(t, f.auditRepo.Entries, 1) {
			assert.Equal(t, entity.AuditActionLoginBlocked, f.auditRepo.Entries[0].Action)
			assert.Equal(t, entity.AuditStatusBlocked, f.auditRepo.Entries[0].Status)
		}
	})

	t.Run("expired lock is implicitly lifted", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		user.FailedLoginAttempts = 5
		lockedUntil := time.Now().Add(-time.Minute)
		user.LockedUntil = &lockedUntil
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)
		f.userRepo.On("Update", ctx, user).Return(nil)
		f.expectDeviceCheck(false)

		result, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: testPassword, Device: testDevice})

		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 0, user.FailedLoginAttempts)
		assert.Nil(t, user.LockedUntil)
	})

	t.Run("password not configured is a distinct error", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		user.PasswordHash = nil
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)

		_, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: testPassword, Device: testDevice})

		assert.ErrorIs(t, err, domainerrors.ErrPasswordNotConfigured)
		assert.NotEqual(t, domainerrors.ErrInvalidCredentials.Error(), err.Error())
	})

	t.Run("success without two-factor completes directly", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		user.FailedLoginAttempts = 3
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)
		f.userRepo.On("Update", ctx, user).Return(nil)
		f.expectDeviceCheck(false)

		result, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: testPassword, Device: testDevice})

		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.RequiresTwoFactor)
		assert.Equal(t, testUserID, result.UserID)
		assert.Equal(t, 0, user.FailedLoginAttempts)
		assert.NotNil(t, user.LastLoginAt)

		if assert.Len(t, f.auditRepo.Entries, 1) {
			entry := f.auditRepo.Entries[0]
			assert.Equal(t, entity.AuditActionLoginSuccess, entry.Action)
			assert.Equal(t, false, entry.Details["twoFactorUsed"])
		}
	})

	t.Run("two-factor enabled halts before completion", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		secret := "JBSWY3DPEHPK3PXP"
		user.TOTPSecret = &secret
		user.TOTPEnabled = true
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)
		f.expectDeviceCheck(false)
		f.cacheRepo.On("Set", mock.Anything, mock.Anything, testUserID, mock.Anything).Return(nil)

		result, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: testPassword, Device: testDevice})

		assert.NoError(t, err)
		assert.False(t, result.Success)
		assert.True(t, result.RequiresTwoFactor)
		assert.Equal(t, testUserID, result.UserID)
		assert.NotEmpty(t, result.ChallengeID)
		assert.NotNil(t, result.Device)
		assert.Nil(t, user.LastLoginAt)
		assert.Contains(t, f.auditRepo.Actions(), entity.AuditActionLogin2FARequired)
	})

	t.Run("stale password carries a warning", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		changed := time.Now().AddDate(0, 0, -120)
		user.PasswordChangedAt = &changed
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)
		f.userRepo.On("Update", ctx, user).Return(nil)
		f.expectDeviceCheck(false)

		result, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: testPassword, Device: testDevice})

		assert.NoError(t, err)
		if assert.NotNil(t, result.PasswordWarning) {
			assert.Equal(t, 120, result.PasswordWarning.Days)
		}
	})

	t.Run("missing change timestamp always warns", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)
		f.userRepo.On("Update", ctx, user).Return(nil)
		f.expectDeviceCheck(false)

		result, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: testPassword, Device: testDevice})

		assert.NoError(t, err)
		assert.NotNil(t, result.PasswordWarning)
	})

	t.Run("new device login adds a dedicated audit entry", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		user.LastKnownIP = "198.51.100.1"
		user.LastKnownUserAgent = testDevice.UserAgent
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)
		f.userRepo.On("Update", ctx, user).Return(nil)
		f.expectDeviceCheck(false)
		f.mailer.On("SendNewDeviceAlert", mock.Anything, testEmail, testDevice.IP, testDevice.UserAgent, mock.Anything).Return(nil).Maybe()

		result, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: testPassword, Device: testDevice})

		assert.NoError(t, err)
		assert.True(t, result.Device.IsNewIP)
		assert.True(t, result.Device.IsNewDevice)
		assert.Contains(t, f.auditRepo.Actions(), entity.AuditActionNewDeviceLogin)
	})

	t.Run("trusted device suppresses the new-device flag", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		user.LastKnownIP = "198.51.100.1"
		f.userRepo.On("FindByEmail", ctx, testEmail).Return(user, nil)
		f.userRepo.On("Update", ctx, user).Return(nil)
		f.expectDeviceCheck(true)

		result, err := f.authUC.Authenticate(ctx, dto.LoginParams{Email: testEmail, Password: testPassword, Device: testDevice})

		assert.NoError(t, err)
		assert.True(t, result.Device.IsNewIP)
		assert.False(t, result.Device.IsNewDevice)
		assert.NotContains(t, f.auditRepo.Actions(), entity.AuditActionNewDeviceLogin)
	})
}

func TestAuthUseCase_TwoFactorLogin(t *testing.T) {
	ctx := context.Background()
	challengeKey := "2fa:challenge:abc123"

	t.Run("expired challenge is rejected", func(t *testing.T) {
		f := newAuthFixture()
		f.cacheRepo.On("Get", ctx, challengeKey).Return("", nil)

		_, err := f.authUC.TwoFactorLogin(ctx, "abc123", "000000", testDevice)

		assert.ErrorIs(t, err, domainerrors.ErrChallengeExpired)
	})

	t.Run("wrong code keeps the challenge alive", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		secret := "JBSWY3DPEHPK3PXP"
		user.TOTPSecret = &secret
		user.TOTPEnabled = true
		f.cacheRepo.On("Get", ctx, challengeKey).Return(testUserID, nil)
		f.userRepo.On("FindByID", ctx, testUserID).Return(user, nil)

		_, err := f.authUC.TwoFactorLogin(ctx, "abc123", "000000", testDevice)

		assert.ErrorIs(t, err, domainerrors.ErrInvalidTwoFactorCode)
		f.cacheRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("challenge consumed by a concurrent completion fails", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		secret := "JBSWY3DPEHPK3PXP"
		user.TOTPSecret = &secret
		user.TOTPEnabled = true
		hash := sha256Hex("deadbeef")
		user.TOTPBackupCodes = []string{hash}
		f.cacheRepo.On("Get", ctx, challengeKey).Return(testUserID, nil)
		f.userRepo.On("FindByID", ctx, testUserID).Return(user, nil)
		f.userRepo.On("ReplaceBackupCodes", ctx, testUserID, []string{hash}, []string{}).Return(true, nil)
		f.cacheRepo.On("Delete", ctx, []string{challengeKey}).Return(int64(0), nil)

		_, err := f.authUC.TwoFactorLogin(ctx, "abc123", "deadbeef", testDevice)

		assert.ErrorIs(t, err, domainerrors.ErrChallengeExpired)
	})

	t.Run("backup code completes the login", func(t *testing.T) {
		f := newAuthFixture()
		user := testUser()
		secret := "JBSWY3DPEHPK3PXP"
		user.TOTPSecret = &secret
		user.TOTPEnabled = true
		hash := sha256Hex("deadbeef")
		user.TOTPBackupCodes = []string{hash}
		f.cacheRepo.On("Get", ctx, challengeKey).Return(testUserID, nil)
		f.userRepo.On("FindByID", ctx, testUserID).Return(user, nil)
		f.userRepo.On("ReplaceBackupCodes", ctx, testUserID, []string{hash}, []string{}).Return(true, nil)
		f.cacheRepo.On("Delete", ctx, []string{challengeKey}).Return(int64(1), nil)
		f.userRepo.On("Update", ctx, user).Return(nil)
		f.expectDeviceCheck(false)

		result, err := f.authUC.TwoFactorLogin(ctx, "abc123", "deadbeef", testDevice)

		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.UsedBackupCode)

		var success *entity.AuditLog
		for i := range f.auditRepo.Entries {
			if f.auditRepo.Entries[i].Action == entity.AuditActionLoginSuccess {
				success = &f.auditRepo.Entries[i]
			}
		}
		if assert.NotNil(t, success) {
			assert.Equal(t, true, success.Details["twoFactorUsed"])
		}
	})
}
