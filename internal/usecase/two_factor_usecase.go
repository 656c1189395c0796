package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/semo-authn/internal/domain/errors"
	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/crypto"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/dto"

	"github.com/pquerna/otp/totp"
	"go.uber.org/zap"
)

const (
	backupCodeCount = 10
	backupCodeBytes = 4 // rendered as 8 hex characters
	recoveryKeyLen  = 32
	qrCodeSizePx    = 200
)

type TwoFactorUseCase struct {
	userRepo repository.UserRepository
	hasher   crypto.PasswordHasher
	auditUC  *AuditLogUseCase
	issuer   string
	logger   *zap.Logger
}

func NewTwoFactorUseCase(
	userRepo repository.UserRepository,
	hasher crypto.PasswordHasher,
	auditUC *AuditLogUseCase,
	issuer string,
	logger *zap.Logger,
) *TwoFactorUseCase {
	return &TwoFactorUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		auditUC:  auditUC,
		issuer:   issuer,
		logger:   logger,
	}
}

// Setup initiates two-factor enrollment: it generates a TOTP secret, a QR
// provisioning image, ten single-use backup codes and an emergency recovery
// key, and stores everything on the user row in one write with two-factor
// still disabled. The plaintext material is returned exactly once; only
// hashes are persisted.
func (u *TwoFactorUseCase) Setup(ctx context.Context, userID string, device dto.DeviceInfo) (*dto.TwoFactorSetupResult, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}
	if user.TOTPEnabled {
		return nil, domainerrors.ErrTwoFactorAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      u.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, err
	}

	qrImage, err := key.Image(qrCodeSizePx, qrCodeSizePx)
	if err != nil {
		return nil, err
	}
	var qrBuf bytes.Buffer
	if err := png.Encode(&qrBuf, qrImage); err != nil {
		return nil, err
	}

	backupCodes, err := generateBackupCodes(backupCodeCount, backupCodeBytes)
	if err != nil {
		return nil, err
	}
	codeHashes := make([]string, len(backupCodes))
	for i, code := range backupCodes {
		codeHashes[i] = hashToken(code)
	}

	recoveryKey, err := randomHex(recoveryKeyLen)
	if err != nil {
		return nil, err
	}

	user.InitTwoFactor(key.Secret(), codeHashes, hashToken(recoveryKey))
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	u.auditUC.Log(ctx, &user.ID, entity.AuditAction2FASetupInitiated, entity.AuditStatusSuccess, device, nil)

	return &dto.TwoFactorSetupResult{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		QRCodeImage: "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrBuf.Bytes()),
		BackupCodes: backupCodes,
		RecoveryKey: formatRecoveryKey(recoveryKey),
	}, nil
}

// VerifyAndEnable confirms the authenticator was provisioned correctly and
// flips two-factor on. A failed code leaves the stored state untouched.
func (u *TwoFactorUseCase) VerifyAndEnable(ctx context.Context, userID, code string, device dto.DeviceInfo) error {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domainerrors.ErrUserNotFound
	}
	if user.TOTPEnabled {
		return domainerrors.ErrTwoFactorAlreadyEnabled
	}
	if user.TOTPSecret == nil {
		return domainerrors.ErrTwoFactorNotInitiated
	}

	if !totp.Validate(code, *user.TOTPSecret) {
		u.auditUC.Log(ctx, &user.ID, entity.AuditAction2FAVerificationFailed, entity.AuditStatusFailure, device, nil)
		return domainerrors.ErrInvalidTwoFactorCode
	}

	user.EnableTwoFactor()
	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	u.auditUC.Log(ctx, &user.ID, entity.AuditAction2FAEnabled, entity.AuditStatusSuccess, device, nil)
	return nil
}

// VerifyLogin authorizes the second factor of a login: TOTP first, then the
// stored backup codes. A matched backup code is consumed with a conditional
// update so two concurrent requests cannot spend the same code. Returns
// whether a backup code was used. It does not complete the login itself.
func (u *TwoFactorUseCase) VerifyLogin(ctx context.Context, userID, code string, device dto.DeviceInfo) (bool, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, domainerrors.ErrUserNotFound
	}
	if !user.TOTPEnabled || user.TOTPSecret == nil {
		return false, domainerrors.ErrTwoFactorNotEnabled
	}

	if totp.Validate(code, *user.TOTPSecret) {
		u.auditUC.Log(ctx, &user.ID, entity.AuditAction2FALoginSuccess, entity.AuditStatusSuccess, device, map[string]interface{}{
			"method":         "totp",
			"usedBackupCode": false,
		})
		return false, nil
	}

	hashed := hashToken(normalizeToken(code))
	for i, stored := range user.TOTPBackupCodes {
		if stored != hashed {
			continue
		}

		updated := make([]string, 0, len(user.TOTPBackupCodes)-1)
		updated = append(updated, user.TOTPBackupCodes[:i]...)
		updated = append(updated, user.TOTPBackupCodes[i+1:]...)

		swapped, err := u.userRepo.ReplaceBackupCodes(ctx, user.ID, user.TOTPBackupCodes, updated)
		if err != nil {
			return false, err
		}
		if !swapped {
			// A concurrent request consumed a code first; treat this
			// attempt as spent.
			u.auditUC.Log(ctx, &user.ID, entity.AuditAction2FALoginFailed, entity.AuditStatusFailure, device, map[string]interface{}{
				"reason": "backup code already consumed",
			})
			return false, domainerrors.ErrInvalidTwoFactorCode
		}

		u.auditUC.Log(ctx, &user.ID, entity.AuditAction2FALoginSuccess, entity.AuditStatusSuccess, device, map[string]interface{}{
			"method":         "backup_code",
			"usedBackupCode": true,
			"remaining":      len(updated),
		})
		return true, nil
	}

	u.auditUC.Log(ctx, &user.ID, entity.AuditAction2FALoginFailed, entity.AuditStatusFailure, device, nil)
	return false, domainerrors.ErrInvalidTwoFactorCode
}

// Disable turns two-factor off after re-verifying the account password. The
// whole TOTP sub-state is cleared in one write; a wrong password changes
// nothing.
func (u *TwoFactorUseCase) Disable(ctx context.Context, userID, password string, device dto.DeviceInfo) error {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domainerrors.ErrUserNotFound
	}
	if !user.TOTPEnabled {
		return domainerrors.ErrTwoFactorNotEnabled
	}

	if !user.HasPassword() || !u.hasher.Verify(password, *user.PasswordHash) {
		u.auditUC.Log(ctx, &user.ID, entity.AuditAction2FADisableFailed, entity.AuditStatusFailure, device, map[string]interface{}{
			"reason": "invalid password",
		})
		return domainerrors.ErrInvalidCredentials
	}

	user.DisableTwoFactor()
	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	u.auditUC.Log(ctx, &user.ID, entity.AuditAction2FADisabled, entity.AuditStatusSuccess, device, nil)
	return nil
}

// RegenerateBackupCodes replaces all stored backup codes with a fresh set
// after re-verifying the account password. The new plaintext codes are
// returned exactly once.
func (u *TwoFactorUseCase) RegenerateBackupCodes(ctx context.Context, userID, password string, device dto.DeviceInfo) ([]string, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}
	if !user.TOTPEnabled {
		return nil, domainerrors.ErrTwoFactorNotEnabled
	}

	if !user.HasPassword() || !u.hasher.Verify(password, *user.PasswordHash) {
		u.auditUC.Log(ctx, &user.ID, entity.AuditActionBackupCodesRegenerated, entity.AuditStatusFailure, device, map[string]interface{}{
			"reason": "invalid password",
		})
		return nil, domainerrors.ErrInvalidCredentials
	}

	backupCodes, err := generateBackupCodes(backupCodeCount, backupCodeBytes)
	if err != nil {
		return nil, err
	}
	codeHashes := make([]string, len(backupCodes))
	for i, code := range backupCodes {
		codeHashes[i] = hashToken(code)
	}

	user.TOTPBackupCodes = codeHashes
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	u.auditUC.Log(ctx, &user.ID, entity.AuditActionBackupCodesRegenerated, entity.AuditStatusSuccess, device, nil)
	return backupCodes, nil
}

// EmergencyRecovery disables two-factor without a session or a working
// authenticator: email + password + recovery key. Every failure returns the
// same generic error so a caller cannot learn which factor was wrong; the
// audit trail records the specific reason. Returns the recovered user's id.
func (u *TwoFactorUseCase) EmergencyRecovery(ctx context.Context, email, password, recoveryKey string, device dto.DeviceInfo) (string, error) {
	details := map[string]interface{}{"email": email}

	fail := func(userID *string, reason string) (string, error) {
		details["reason"] = reason
		u.auditUC.Log(ctx, userID, entity.AuditActionEmergencyRecoveryFailed, entity.AuditStatusFailure, device, details)
		return "", domainerrors.ErrInvalidRecovery
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return fail(nil, "unknown email")
	}
	if !user.TOTPEnabled {
		return fail(&user.ID, "two-factor not enabled")
	}
	if user.TOTPRecoveryKeyHash == nil {
		return fail(&user.ID, "no recovery key configured")
	}
	if !user.HasPassword() || !u.hasher.Verify(password, *user.PasswordHash) {
		return fail(&user.ID, "invalid password")
	}
	if hashToken(normalizeToken(recoveryKey)) != *user.TOTPRecoveryKeyHash {
		return fail(&user.ID, "invalid recovery key")
	}

	user.DisableTwoFactor()
	if err := u.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	u.auditUC.Log(ctx, &user.ID, entity.AuditActionEmergencyRecovery, entity.AuditStatusSuccess, device, details)
	u.logger.Info("two-factor disabled via emergency recovery", zap.String("user_id", user.ID))

	return user.ID, nil
}

// Status reports whether two-factor is enabled and how many backup codes
// remain unspent.
func (u *TwoFactorUseCase) Status(ctx context.Context, userID string) (*dto.TwoFactorStatus, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}

	return &dto.TwoFactorStatus{
		Enabled:              user.TOTPEnabled,
		BackupCodesRemaining: len(user.TOTPBackupCodes),
	}, nil
}
