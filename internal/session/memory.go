package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps active sessions in a process-local map. Adequate for
// a single-instance deployment only; a restart invalidates every
// session. Use RedisStore when running more than one instance.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session

	ttl time.Duration
	now func() time.Time

	closeOnce sync.Once
	done      chan struct{}
}

// NewMemoryStore creates a memory-backed store. A background sweeper
// evicts expired entries every sweepInterval; pass 0 to disable it
// (Validate still enforces the TTL synchronously).
func NewMemoryStore(ttl, sweepInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	if sweepInterval > 0 {
		go s.runSweeper(sweepInterval)
	}

	return s
}

// Create records a session for the user and returns its token.
func (s *MemoryStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: s.now(),
	}
	s.mu.Unlock()

	return token, nil
}

// Validate returns the session if present and within the TTL. Expired
// entries are deleted before returning ErrInvalidSession.
func (s *MemoryStore) Validate(ctx context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrInvalidSession
	}

	if s.now().Sub(sess.CreatedAt) > s.ttl {
		delete(s.sessions, token)
		return nil, ErrInvalidSession
	}

	return &sess, nil
}

// Destroy removes the session. Destroying an unknown token is a no-op.
func (s *MemoryStore) Destroy(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Len reports the number of entries currently held, including entries
// the sweeper has not visited yet.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background sweeper. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *MemoryStore) runSweeper(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

// sweep evicts every entry past the TTL. Coarse and eventually
// consistent; Validate remains the authoritative check.
func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) > s.ttl {
			delete(s.sessions, token)
		}
	}
}
