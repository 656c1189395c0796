package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

// sha256Hex mirrors how backup codes and recovery keys are stored.
func sha256Hex(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastKnownDevice(ctx context.Context, userID, ip, userAgent string) error {
	args := m.Called(ctx, userID, ip, userAgent)
	return args.Error(0)
}

func (m *MockUserRepository) ReplaceBackupCodes(ctx context.Context, userID string, old, updated []string) (bool, error) {
	args := m.Called(ctx, userID, old, updated)
	return args.Bool(0), args.Error(1)
}

// MockAuditLogRepository is a mock implementation of repository.AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock

	// Entries collects everything written, for assertions on the trail.
	Entries []entity.AuditLog
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	args := m.Called(ctx, log)
	if args.Error(0) == nil {
		m.Entries = append(m.Entries, *log)
	}
	return args.Error(0)
}

func (m *MockAuditLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.AuditLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.AuditLog), args.Error(1)
}

func (m *MockAuditLogRepository) CountFailuresSince(ctx context.Context, email, ip string, since time.Time) (int64, error) {
	args := m.Called(ctx, email, ip, since)
	return args.Get(0).(int64), args.Error(1)
}

// Actions returns the recorded audit action tags in order.
func (m *MockAuditLogRepository) Actions() []entity.AuditAction {
	actions := make([]entity.AuditAction, 0, len(m.Entries))
	for _, e := range m.Entries {
		actions = append(actions, e.Action)
	}
	return actions
}

// MockTrustedDeviceRepository is a mock implementation of repository.TrustedDeviceRepository
type MockTrustedDeviceRepository struct {
	mock.Mock
}

func (m *MockTrustedDeviceRepository) ListByUser(ctx context.Context, userID string) ([]entity.TrustedDevice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TrustedDevice), args.Error(1)
}

func (m *MockTrustedDeviceRepository) Exists(ctx context.Context, userID, fingerprint, ip, userAgent string) (bool, error) {
	args := m.Called(ctx, userID, fingerprint, ip, userAgent)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrustedDeviceRepository) Create(ctx context.Context, device *entity.TrustedDevice) error {
	args := m.Called(ctx, device)
	return args.Error(0)
}

func (m *MockTrustedDeviceRepository) Delete(ctx context.Context, userID, deviceID string) error {
	args := m.Called(ctx, userID, deviceID)
	return args.Error(0)
}

// MockCacheRepository is a mock implementation of repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) GetDel(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(ctx context.Context, keys ...string) (int64, error) {
	args := m.Called(ctx, keys)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionRepository is a mock implementation of repository.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Add(ctx context.Context, userID, sessionID string) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) Members(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSessionRepository) Remove(ctx context.Context, userID string, sessionIDs ...string) error {
	args := m.Called(ctx, userID, sessionIDs)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteSessions(ctx context.Context, sessionIDs ...string) (int64, error) {
	args := m.Called(ctx, sessionIDs)
	return args.Get(0).(int64), args.Error(1)
}

// fakeHasher is a deterministic PasswordHasher so tests do not pay bcrypt
// cost. Verify matches only hashes produced by this fake.
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (fakeHasher) Verify(plaintext, hash string) bool {
	return hash == "hashed:"+plaintext
}

// fakeMailer records alert mail without sending anything.
type fakeMailer struct {
	mock.Mock
}

func (m *fakeMailer) SendNewDeviceAlert(ctx context.Context, to, ip, userAgent string, when time.Time) error {
	args := m.Called(ctx, to, ip, userAgent, when)
	return args.Error(0)
}
