package middleware

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// SessionAuth gates protected routes on a valid session cookie. On the
// happy path its only side effect is putting the resolved user id into
// the request context; every reject path answers 401.
//
// The TTL double-check below is defensive: Validate should already have
// evicted an expired session, but the gate destroys and rejects anyway
// rather than trust the store.
func SessionAuth(store session.Store, ttl time.Duration, cookie session.CookieOptions, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookie.Name)
			if err != nil || c.Value == "" {
				logger.Debug("Missing session cookie")
				RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			sess, err := store.Validate(r.Context(), c.Value)
			if err != nil {
				logger.Debug("Session validation failed", zap.Error(err))
				session.ClearCookie(w, cookie)
				RespondWithError(w, http.StatusUnauthorized, "invalid session")
				return
			}

			if time.Since(sess.CreatedAt) > ttl {
				logger.Debug("Session past TTL", zap.Time("created_at", sess.CreatedAt))
				store.Destroy(r.Context(), c.Value)
				session.ClearCookie(w, cookie)
				RespondWithError(w, http.StatusUnauthorized, "session expired")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, sess.UserID)

			logger.Debug("User authenticated",
				zap.String("user_id", sess.UserID.String()),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user's id from the request context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// SessionToken returns the raw session token carried by the request, if any.
func SessionToken(r *http.Request, cookieName string) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
