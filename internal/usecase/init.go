package usecase

import (
	"github.com/wekeepgrowing/semo-authn/internal/config"
	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/crypto"

	"go.uber.org/zap"
)

// UseCases bundles every use case the transport layer consumes.
type UseCases struct {
	Auth      *AuthUseCase
	TwoFactor *TwoFactorUseCase
	User      *UserUseCase
	Device    *DeviceUseCase
	Session   *SessionUseCase
	AuditLog  *AuditLogUseCase
	Captcha   *CaptchaUseCase
}

// SetupUseCases wires all use cases, starting from the ones nothing else
// depends on.
func SetupUseCases(
	logger *zap.Logger,
	cfg *config.Config,
	repos *repository.Repositories,
	hasher crypto.PasswordHasher,
	mailer Mailer,
) *UseCases {
	auditUC := NewAuditLogUseCase(repos.AuditLog, logger)
	deviceUC := NewDeviceUseCase(repos.User, repos.TrustedDevice, logger)
	sessionUC := NewSessionUseCase(repos.Session, logger)
	captchaUC := NewCaptchaUseCase(repos.Cache, auditUC, cfg.Security.CaptchaEnabled, logger)

	twoFactorUC := NewTwoFactorUseCase(repos.User, hasher, auditUC, cfg.Security.TOTPIssuer, logger)
	userUC := NewUserUseCase(repos.User, hasher, auditUC, logger)

	authUC := NewAuthUseCase(repos.User, repos.Cache, hasher, auditUC, deviceUC, twoFactorUC, mailer, logger)

	return &UseCases{
		Auth:      authUC,
		TwoFactor: twoFactorUC,
		User:      userUC,
		Device:    deviceUC,
		Session:   sessionUC,
		AuditLog:  auditUC,
		Captcha:   captchaUC,
	}
}
