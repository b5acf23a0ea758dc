package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidSession is returned by Validate for tokens that are unknown,
// malformed or past their TTL. Callers must not learn which.
var ErrInvalidSession = errors.New("invalid session")

// Session associates an opaque client-held token with a user. Its
// lifetime is independent of the user row: it ends on logout, expiry or
// process restart (for the memory store).
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpiresAt returns the instant the session stops being valid.
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

// Store tracks active sessions. Implementations must be safe for
// concurrent use by multiple in-flight requests.
//
// Validate is the authoritative, synchronous TTL enforcement; any
// background sweeping an implementation does only bounds memory growth
// between validations.
type Store interface {
	// Create records a new session for the user and returns its token.
	Create(ctx context.Context, userID uuid.UUID) (string, error)

	// Validate returns the session for the token if it exists and has
	// not outlived the TTL. Stale or unknown entries are removed as a
	// side effect, and ErrInvalidSession is returned.
	Validate(ctx context.Context, token string) (*Session, error)

	// Destroy removes the session. It is idempotent: destroying an
	// unknown token is not an error.
	Destroy(ctx context.Context, token string) error
}
