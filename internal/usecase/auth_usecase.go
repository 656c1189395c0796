package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/semo-authn/internal/domain/errors"
	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/crypto"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/dto"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// Mailer sends account security notifications. Delivery is best-effort and
// never blocks an authentication flow.
type Mailer interface {
	SendNewDeviceAlert(ctx context.Context, to, ip, userAgent string, when time.Time) error
}

type AuthUseCase struct {
	userRepo    repository.UserRepository
	cacheRepo   repository.CacheRepository
	hasher      crypto.PasswordHasher
	auditUC     *AuditLogUseCase
	deviceUC    *DeviceUseCase
	twoFactorUC *TwoFactorUseCase
	mailer      Mailer
	logger      *zap.Logger
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	hasher crypto.PasswordHasher,
	auditUC *AuditLogUseCase,
	deviceUC *DeviceUseCase,
	twoFactorUC *TwoFactorUseCase,
	mailer Mailer,
	logger *zap.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
		hasher:      hasher,
		auditUC:     auditUC,
		deviceUC:    deviceUC,
		twoFactorUC: twoFactorUC,
		mailer:      mailer,
		logger:      logger,
	}
}

// Authenticate runs the first factor of a login: user lookup, lockout check,
// password verification, then either the two-factor gate or full completion.
// Unknown email and wrong password produce the same error so the response
// never reveals which accounts exist.
func (u *AuthUseCase) Authenticate(ctx context.Context, params dto.LoginParams) (*dto.AuthResult, error) {
	now := time.Now()

	user, err := u.userRepo.FindByEmail(ctx, params.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		u.auditUC.Log(ctx, nil, entity.AuditActionLoginAttempt, entity.AuditStatusFailure, params.Device, map[string]interface{}{
			"email":  params.Email,
			"reason": "unknown email",
		})
		return nil, domainerrors.ErrInvalidCredentials
	}

	if user.IsLocked(now) {
		// Attempts against a locked account are recorded but do not extend
		// the lock or advance the failure counter.
		u.auditUC.Log(ctx, &user.ID, entity.AuditActionLoginBlocked, entity.AuditStatusBlocked, params.Device, map[string]interface{}{
			"email": params.Email,
		})
		return nil, domainerrors.ErrAccountLocked
	}

	if !user.HasPassword() {
		u.auditUC.Log(ctx, &user.ID, entity.AuditActionLoginAttempt, entity.AuditStatusFailure, params.Device, map[string]interface{}{
			"email":  params.Email,
			"reason": "password not configured",
		})
		return nil, domainerrors.ErrPasswordNotConfigured
	}

	if !u.hasher.Verify(params.Password, *user.PasswordHash) {
		locked := user.RecordLoginFailure(now)
		if err := u.userRepo.Update(ctx, user); err != nil {
			u.logger.Error("failed to record login failure", zap.String("user_id", user.ID), zap.Error(err))
		}

		details := map[string]interface{}{
			"email":           params.Email,
			"reason":          "invalid password",
			"failed_attempts": user.FailedLoginAttempts,
		}
		if locked {
			details["locked"] = true
		}
		u.auditUC.Log(ctx, &user.ID, entity.AuditActionLoginAttempt, entity.AuditStatusFailure, params.Device, details)
		return nil, domainerrors.ErrInvalidCredentials
	}

	if user.TOTPEnabled {
		return u.twoFactorGate(ctx, user, params.Device)
	}

	return u.completeLogin(ctx, user, params.Device, false)
}

// twoFactorGate halts a password-verified login short of completion: it
// computes device flags so the client can warn about a new device before the
// second factor, issues a short-lived challenge and reports that two-factor
// is still outstanding.
func (u *AuthUseCase) twoFactorGate(ctx context.Context, user *entity.User, device dto.DeviceInfo) (*dto.AuthResult, error) {
	deviceResult, err := u.deviceUC.Check(ctx, user, device)
	if err != nil {
		return nil, err
	}

	challengeID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	key := constants.TwoFactorChallengePrefix + challengeID
	if err := u.cacheRepo.Set(ctx, key, user.ID, constants.TwoFactorChallengeTTL); err != nil {
		return nil, err
	}

	u.auditUC.Log(ctx, &user.ID, entity.AuditActionLogin2FARequired, entity.AuditStatusSuccess, device, map[string]interface{}{
		"isNewDevice":       deviceResult.IsNewDevice,
		"isNewIp":           deviceResult.IsNewIP,
		"deviceFingerprint": deviceResult.Fingerprint,
	})

	return &dto.AuthResult{
		Success:           false,
		RequiresTwoFactor: true,
		UserID:            user.ID,
		ChallengeID:       challengeID,
		Device:            deviceResult,
	}, nil
}

// TwoFactorLogin finishes a login that was halted at the two-factor gate.
// The challenge is consumed only after the code verifies, and consumption is
// atomic, so concurrent completions of one challenge produce exactly one
// established login.
func (u *AuthUseCase) TwoFactorLogin(ctx context.Context, challengeID, code string, device dto.DeviceInfo) (*dto.AuthResult, error) {
	key := constants.TwoFactorChallengePrefix + challengeID

	userID, err := u.cacheRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, domainerrors.ErrChallengeExpired
	}

	usedBackupCode, err := u.twoFactorUC.VerifyLogin(ctx, userID, code, device)
	if err != nil {
		// A wrong code leaves the challenge alive for another try until
		// it expires.
		return nil, err
	}

	deleted, err := u.cacheRepo.Delete(ctx, key)
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, domainerrors.ErrChallengeExpired
	}

	// Reload: backup code consumption may have rewritten the user row.
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}

	result, err := u.completeLogin(ctx, user, device, true)
	if err != nil {
		return nil, err
	}
	result.UsedBackupCode = usedBackupCode
	return result, nil
}

// completeLogin runs the success-path side effects shared by password-only
// logins and two-factor completions: lockout reset, lastLoginAt, device
// check, password age evaluation and the success audit trail.
func (u *AuthUseCase) completeLogin(ctx context.Context, user *entity.User, device dto.DeviceInfo, twoFactorUsed bool) (*dto.AuthResult, error) {
	if user.TOTPEnabled && !twoFactorUsed {
		return nil, domainerrors.ErrTwoFactorRequired
	}

	now := time.Now()
	user.RecordLogin(now)
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	deviceResult, err := u.deviceUC.Check(ctx, user, device)
	if err != nil {
		return nil, err
	}

	var warning *dto.PasswordWarning
	if days := user.PasswordAgeDays(now); days >= entity.PasswordMaxAgeDays {
		warning = &dto.PasswordWarning{
			Days:    days,
			Message: fmt.Sprintf("Your password is %d days old. Consider changing it.", days),
		}
	}

	u.auditUC.Log(ctx, &user.ID, entity.AuditActionLoginSuccess, entity.AuditStatusSuccess, device, map[string]interface{}{
		"isNewDevice":       deviceResult.IsNewDevice,
		"isNewIp":           deviceResult.IsNewIP,
		"deviceFingerprint": deviceResult.Fingerprint,
		"twoFactorUsed":     twoFactorUsed,
	})

	if deviceResult.IsNewDevice {
		u.auditUC.Log(ctx, &user.ID, entity.AuditActionNewDeviceLogin, entity.AuditStatusSuccess, device, map[string]interface{}{
			"deviceFingerprint": deviceResult.Fingerprint,
		})

		email := user.Email
		go func() {
			_ = u.mailer.SendNewDeviceAlert(context.Background(), email, device.IP, device.UserAgent, now)
		}()
	}

	return &dto.AuthResult{
		Success:         true,
		UserID:          user.ID,
		Device:          deviceResult,
		PasswordWarning: warning,
	}, nil
}

// Logout records the end of a session. Session destruction itself happens in
// the transport layer that owns the cookie.
func (u *AuthUseCase) Logout(ctx context.Context, userID string, device dto.DeviceInfo) {
	u.auditUC.Log(ctx, &userID, entity.AuditActionLogout, entity.AuditStatusSuccess, device, nil)
}
