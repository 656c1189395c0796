package usecase

import (
	"context"

	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"

	"go.uber.org/zap"
)

type SessionUseCase struct {
	sessionRepo repository.SessionRepository
	logger      *zap.Logger
}

func NewSessionUseCase(sessionRepo repository.SessionRepository, logger *zap.Logger) *SessionUseCase {
	return &SessionUseCase{
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

// RegisterSession records a freshly established session id for the user.
func (u *SessionUseCase) RegisterSession(ctx context.Context, userID, sessionID string) error {
	return u.sessionRepo.Add(ctx, userID, sessionID)
}

// InvalidateOtherSessions destroys every session of the user except the
// current one and returns how many were invalidated.
func (u *SessionUseCase) InvalidateOtherSessions(ctx context.Context, userID, currentSessionID string) (int64, error) {
	sessionIDs, err := u.sessionRepo.Members(ctx, userID)
	if err != nil {
		return 0, err
	}

	others := make([]string, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		if id != currentSessionID {
			others = append(others, id)
		}
	}
	if len(others) == 0 {
		return 0, nil
	}

	count, err := u.sessionRepo.DeleteSessions(ctx, others...)
	if err != nil {
		return 0, err
	}
	if err := u.sessionRepo.Remove(ctx, userID, others...); err != nil {
		u.logger.Warn("failed to prune session index",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	if count > 0 {
		u.logger.Info("invalidated other sessions",
			zap.String("user_id", userID),
			zap.Int64("count", count))
	}
	return count, nil
}

// DropSession removes a session id from the user's index after logout. The
// cookie store destroys the session record itself.
func (u *SessionUseCase) DropSession(ctx context.Context, userID, sessionID string) error {
	return u.sessionRepo.Remove(ctx, userID, sessionID)
}
