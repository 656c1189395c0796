package usecase_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestFingerprint(t *testing.T) {
	t.Run("stable short hex id", func(t *testing.T) {
		fp := usecase.Fingerprint("203.0.113.7", "Mozilla/5.0")

		assert.Len(t, fp, 16)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), fp)
		assert.Equal(t, fp, usecase.Fingerprint("203.0.113.7", "Mozilla/5.0"))
	})

	t.Run("changes with either component", func(t *testing.T) {
		base := usecase.Fingerprint("203.0.113.7", "Mozilla/5.0")

		assert.NotEqual(t, base, usecase.Fingerprint("203.0.113.8", "Mozilla/5.0"))
		assert.NotEqual(t, base, usecase.Fingerprint("203.0.113.7", "curl/8.0"))
	})
}

func TestDeviceUseCase_Check(t *testing.T) {
	ctx := context.Background()

	newFixture := func() (*MockUserRepository, *MockTrustedDeviceRepository, *usecase.DeviceUseCase) {
		userRepo := new(MockUserRepository)
		deviceRepo := new(MockTrustedDeviceRepository)
		uc := usecase.NewDeviceUseCase(userRepo, deviceRepo, zap.NewNop())
		return userRepo, deviceRepo, uc
	}

	t.Run("first sighting is not flagged as new", func(t *testing.T) {
		userRepo, deviceRepo, uc := newFixture()
		user := testUser()
		deviceRepo.On("Exists", ctx, testUserID, mock.Anything, testDevice.IP, testDevice.UserAgent).Return(false, nil)
		userRepo.On("UpdateLastKnownDevice", ctx, testUserID, testDevice.IP, testDevice.UserAgent).Return(nil)

		result, err := uc.Check(ctx, user, testDevice)

		assert.NoError(t, err)
		assert.False(t, result.IsNewIP)
		assert.False(t, result.IsNewUserAgent)
		assert.False(t, result.IsNewDevice)
	})

	t.Run("changed ip flags a new device", func(t *testing.T) {
		userRepo, deviceRepo, uc := newFixture()
		user := testUser()
		user.LastKnownIP = "198.51.100.1"
		user.LastKnownUserAgent = testDevice.UserAgent
		deviceRepo.On("Exists", ctx, testUserID, mock.Anything, testDevice.IP, testDevice.UserAgent).Return(false, nil)
		userRepo.On("UpdateLastKnownDevice", ctx, testUserID, testDevice.IP, testDevice.UserAgent).Return(nil)

		result, err := uc.Check(ctx, user, testDevice)

		assert.NoError(t, err)
		assert.True(t, result.IsNewIP)
		assert.False(t, result.IsNewUserAgent)
		assert.True(t, result.IsNewDevice)
	})

	t.Run("trusted device is never new", func(t *testing.T) {
		userRepo, deviceRepo, uc := newFixture()
		user := testUser()
		user.LastKnownIP = "198.51.100.1"
		user.LastKnownUserAgent = "curl/8.0"
		deviceRepo.On("Exists", ctx, testUserID, mock.Anything, testDevice.IP, testDevice.UserAgent).Return(true, nil)
		userRepo.On("UpdateLastKnownDevice", ctx, testUserID, testDevice.IP, testDevice.UserAgent).Return(nil)

		result, err := uc.Check(ctx, user, testDevice)

		assert.NoError(t, err)
		assert.True(t, result.IsNewIP)
		assert.True(t, result.IsNewUserAgent)
		assert.False(t, result.IsNewDevice)
		assert.True(t, result.Trusted)
	})

	t.Run("the origin is always persisted as last known", func(t *testing.T) {
		userRepo, deviceRepo, uc := newFixture()
		user := testUser()
		user.LastKnownIP = "198.51.100.1"
		deviceRepo.On("Exists", ctx, testUserID, mock.Anything, testDevice.IP, testDevice.UserAgent).Return(false, nil)
		userRepo.On("UpdateLastKnownDevice", ctx, testUserID, testDevice.IP, testDevice.UserAgent).Return(nil)

		_, err := uc.Check(ctx, user, testDevice)

		assert.NoError(t, err)
		userRepo.AssertCalled(t, "UpdateLastKnownDevice", ctx, testUserID, testDevice.IP, testDevice.UserAgent)
	})
}

func TestDeviceUseCase_TrustCurrentDevice(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new trusted device", func(t *testing.T) {
		deviceRepo := new(MockTrustedDeviceRepository)
		uc := usecase.NewDeviceUseCase(new(MockUserRepository), deviceRepo, zap.NewNop())

		deviceRepo.On("ListByUser", ctx, testUserID).Return([]entity.TrustedDevice{}, nil)
		deviceRepo.On("Create", ctx, mock.MatchedBy(func(d *entity.TrustedDevice) bool {
			return d.UserID == testUserID &&
				d.IPAddress == testDevice.IP &&
				d.UserAgent == testDevice.UserAgent &&
				d.Fingerprint == usecase.Fingerprint(testDevice.IP, testDevice.UserAgent)
		})).Return(nil)

		device, err := uc.TrustCurrentDevice(ctx, testUserID, testDevice)

		assert.NoError(t, err)
		assert.NotEmpty(t, device.ID)
	})

	t.Run("re-registering returns the existing record", func(t *testing.T) {
		deviceRepo := new(MockTrustedDeviceRepository)
		uc := usecase.NewDeviceUseCase(new(MockUserRepository), deviceRepo, zap.NewNop())

		existing := entity.TrustedDevice{
			ID:          "device-1",
			UserID:      testUserID,
			Fingerprint: usecase.Fingerprint(testDevice.IP, testDevice.UserAgent),
		}
		deviceRepo.On("ListByUser", ctx, testUserID).Return([]entity.TrustedDevice{existing}, nil)

		device, err := uc.TrustCurrentDevice(ctx, testUserID, testDevice)

		assert.NoError(t, err)
		assert.Equal(t, "device-1", device.ID)
		deviceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
