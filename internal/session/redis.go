package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis so that any instance behind a load
// balancer can validate a token. Expiry is delegated to Redis TTLs, so
// there is no background sweep to run.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(token string) string {
	return redisKeyPrefix + token
}

// Create records a session for the user and returns its token.
func (s *RedisStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	sess := Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(token), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Validate returns the session if Redis still holds it and it is within
// the TTL.
func (s *RedisStore) Validate(ctx context.Context, token string) (*Session, error) {
	val, err := s.client.Get(ctx, redisKey(token)).Result()
	if err == redis.Nil {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	// Redis evicts on TTL already; this guards against a key whose TTL
	// was altered out of band.
	if time.Since(sess.CreatedAt) > s.ttl {
		s.client.Del(ctx, redisKey(token))
		return nil, ErrInvalidSession
	}

	return &sess, nil
}

// Destroy removes the session. Destroying an unknown token is a no-op.
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
