package repository

import (
	"context"

	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/constants"

	"github.com/redis/go-redis/v9"
)

type SessionRepositoryImpl struct {
	client *redis.Client
}

// NewSessionRepository creates the Redis-backed session index repository.
// The cookie store owns the session records themselves; this index tracks
// which session ids belong to which user so other sessions can be revoked.
func NewSessionRepository(client *redis.Client) repository.SessionRepository {
	return &SessionRepositoryImpl{client: client}
}

func userSetKey(userID string) string {
	return constants.SessionUserSetPrefix + userID
}

// Add registers a session id under the user's session set.
func (r *SessionRepositoryImpl) Add(ctx context.Context, userID, sessionID string) error {
	return r.client.SAdd(ctx, userSetKey(userID), sessionID).Err()
}

// Members returns every session id registered for the user.
func (r *SessionRepositoryImpl) Members(ctx context.Context, userID string) ([]string, error) {
	return r.client.SMembers(ctx, userSetKey(userID)).Result()
}

// Remove drops session ids from the user's session set.
func (r *SessionRepositoryImpl) Remove(ctx context.Context, userID string, sessionIDs ...string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(sessionIDs))
	for i, id := range sessionIDs {
		members[i] = id
	}
	return r.client.SRem(ctx, userSetKey(userID), members...).Err()
}

// DeleteSessions removes the session records themselves from the cookie
// store's keyspace and reports how many existed.
func (r *SessionRepositoryImpl) DeleteSessions(ctx context.Context, sessionIDs ...string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	keys := make([]string, len(sessionIDs))
	for i, id := range sessionIDs {
		keys[i] = constants.SessionKeyPrefix + id
	}
	return r.client.Del(ctx, keys...).Result()
}
