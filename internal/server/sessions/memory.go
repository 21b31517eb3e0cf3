package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/hfiles/backend/internal/common"
)

// tokenBytes is the entropy of a session token; hex-encoding doubles the
// string length.
const tokenBytes = 32

// janitorInterval is how often the background sweep scans for expired
// sessions. Lazy expiry on Resolve keeps correctness independent of it.
const janitorInterval = 5 * time.Minute

type session struct {
	userID  int64
	expires time.Time
}

// MemoryStore is a process-local Store: a mutex-guarded map with lazy expiry
// on read plus a periodic sweep. It is the only mutable structure shared by
// unrelated requests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]session
	ttl      time.Duration

	// now is a seam for expiry tests.
	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(userID int64) (string, error) {
	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{userID: userID, expires: s.now().Add(s.ttl)}

	return token, nil
}

func (s *MemoryStore) Resolve(token string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, false
	}

	if !s.now().Before(sess.expires) {
		// Lazy expiry: the deadline has passed, drop the entry.
		delete(s.sessions, token)
		return 0, false
	}

	// Sliding window: every successful access pushes the deadline forward.
	sess.expires = s.now().Add(s.ttl)
	s.sessions[token] = sess

	return sess.userID, true
}

func (s *MemoryStore) Destroy(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *MemoryStore) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryStore) sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if !now.Before(sess.expires) {
			delete(s.sessions, token)
		}
	}
}
