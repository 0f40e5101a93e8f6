package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cercino/vointer/internal/domain"
)

// UsedTokenStore is the in-memory fallback for dev and tests. Markers are
// lost on restart, which weakens the single-use guarantee to the token's
// plain expiry; acceptable outside production.
type UsedTokenStore struct {
	mu   sync.Mutex
	used map[string]time.Time // key -> marker expiry
	now  func() time.Time
}

func NewUsedTokenStore() *UsedTokenStore {
	return &UsedTokenStore{
		used: map[string]time.Time{},
		now:  time.Now,
	}
}

func (s *UsedTokenStore) Consume(_ context.Context, purpose domain.TokenPurpose, token string, ttl time.Duration) (bool, error) {
	if token == "" {
		return false, domain.ErrMissingField("token")
	}
	if ttl <= 0 {
		ttl = time.Second
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	key := string(purpose) + ":" + token

	if exp, ok := s.used[key]; ok && now.Before(exp) {
		return false, nil
	}

	s.used[key] = now.Add(ttl)

	// Drop stale markers opportunistically.
	for k, exp := range s.used {
		if !now.Before(exp) {
			delete(s.used, k)
		}
	}
	return true, nil
}
