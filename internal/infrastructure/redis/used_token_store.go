package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cercino/vointer/internal/domain"
)

// UsedTokenStore records consumed single-use tokens. A marker only needs
// to outlive the token's own validity window; after that the signature
// check rejects it anyway, so every key carries a TTL.
type UsedTokenStore struct {
	client *Client
	prefix string // e.g. "used:"
}

func NewUsedTokenStore(c *Client) *UsedTokenStore {
	return &UsedTokenStore{
		client: c,
		prefix: "used:",
	}
}

// Consume marks the token as used. SETNX makes the first-use decision
// atomic: exactly one caller wins, concurrent replays lose.
func (s *UsedTokenStore) Consume(ctx context.Context, purpose domain.TokenPurpose, token string, ttl time.Duration) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, domain.ErrMissingField("token")
	}
	if s.client == nil || s.client.rdb == nil {
		return false, domain.ErrInternal(errors.New("used-token store not configured"))
	}
	if ttl <= 0 {
		// Expired tokens never reach the store in the normal path; keep the
		// marker around briefly anyway.
		ttl = time.Second
	}

	key := s.prefix + string(purpose) + ":" + token
	first, err := s.client.rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, domain.ErrInternal(err)
	}
	return first, nil
}
