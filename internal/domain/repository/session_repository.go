package repository

import (
	"context"
)

// SessionRepository tracks which server-side session ids belong to a user
// and can delete the backing session records directly. The sessions
// themselves are written by the cookie store; this index exists so
// single-session enforcement can enumerate and revoke them.
type SessionRepository interface {
	// Add records a session id under the user's index.
	Add(ctx context.Context, userID, sessionID string) error

	// Members lists the user's live session ids.
	Members(ctx context.Context, userID string) ([]string, error)

	// Remove drops ids from the user's index.
	Remove(ctx context.Context, userID string, sessionIDs ...string) error

	// DeleteSessions destroys the stored session records for the given ids
	// and returns how many existed.
	DeleteSessions(ctx context.Context, sessionIDs ...string) (int64, error)
}
