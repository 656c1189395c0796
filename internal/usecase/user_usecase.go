package usecase

import (
	"context"
	"regexp"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/semo-authn/internal/domain/errors"
	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/crypto"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/dto"

	"go.uber.org/zap"
)

const minPasswordLength = 12

var (
	upperPattern  = regexp.MustCompile(`[A-Z]`)
	lowerPattern  = regexp.MustCompile(`[a-z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
	symbolPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// validatePassword checks the password policy and reports the first rule
// violated, so the caller learns exactly what to fix.
func validatePassword(password string) error {
	switch {
	case len(password) < minPasswordLength:
		return domainerrors.NewPasswordPolicyError("Password must be at least 12 characters long")
	case !upperPattern.MatchString(password):
		return domainerrors.NewPasswordPolicyError("Password must contain at least one uppercase letter")
	case !lowerPattern.MatchString(password):
		return domainerrors.NewPasswordPolicyError("Password must contain at least one lowercase letter")
	case !digitPattern.MatchString(password):
		return domainerrors.NewPasswordPolicyError("Password must contain at least one digit")
	case !symbolPattern.MatchString(password):
		return domainerrors.NewPasswordPolicyError("Password must contain at least one special character")
	}
	return nil
}

type UserUseCase struct {
	userRepo repository.UserRepository
	hasher   crypto.PasswordHasher
	auditUC  *AuditLogUseCase
	logger   *zap.Logger
}

func NewUserUseCase(
	userRepo repository.UserRepository,
	hasher crypto.PasswordHasher,
	auditUC *AuditLogUseCase,
	logger *zap.Logger,
) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		auditUC:  auditUC,
		logger:   logger,
	}
}

// Get returns the user by id.
func (u *UserUseCase) Get(ctx context.Context, userID string) (*entity.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}
	return user, nil
}

// SetPassword validates the new password against the policy and stores its
// hash. A policy violation performs no write. This is also the initial setup
// path, so no current password is required; the auth middleware gates who
// can reach it.
func (u *UserUseCase) SetPassword(ctx context.Context, userID, newPassword string, device dto.DeviceInfo) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domainerrors.ErrUserNotFound
	}

	hash, err := u.hasher.Hash(newPassword)
	if err != nil {
		u.logger.Error("failed to hash password", zap.Error(err))
		return err
	}

	user.SetPassword(hash, time.Now())
	if err := u.userRepo.Update(ctx, user); err != nil {
		return err
	}

	u.auditUC.Log(ctx, &user.ID, entity.AuditActionPasswordChanged, entity.AuditStatusSuccess, device, nil)
	return nil
}

// PasswordConfigured reports whether the account with the given email exists
// and has completed password setup. The initial-setup gate and the setup
// status endpoint both key off this.
func (u *UserUseCase) PasswordConfigured(ctx context.Context, email string) (bool, error) {
	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return user != nil && user.HasPassword(), nil
}
