package basket

import (
	"context"
	"fmt"
	"time"

	"github.com/revitalife/revitalife-shop/internal/pkg/cache"
)

// DefaultTTL is how long an idle basket survives in the store.
const DefaultTTL = 24 * time.Hour

// Store persists baskets between requests.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Basket, error)
	Save(ctx context.Context, b *Basket) error
	Delete(ctx context.Context, sessionID string) error
}

type redisStore struct {
	ttl time.Duration
}

// NewRedisStore creates a Store backed by the shared Redis cache.
func NewRedisStore(ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStore{ttl: ttl}
}

func basketKey(sessionID string) string {
	return fmt.Sprintf("basket:%s", sessionID)
}

// Load returns the stored basket, or a fresh empty one when the key is
// missing or expired.
func (s *redisStore) Load(ctx context.Context, sessionID string) (*Basket, error) {
	var b Basket
	err := cache.GetJSON(ctx, basketKey(sessionID), &b)
	if err != nil {
		if cache.IsMiss(err) {
			return New(sessionID), nil
		}
		return nil, err
	}
	if b.Items == nil {
		b.Items = []Item{}
	}
	b.SessionID = sessionID
	return &b, nil
}

func (s *redisStore) Save(ctx context.Context, b *Basket) error {
	return cache.SetJSON(ctx, basketKey(b.SessionID), b, s.ttl)
}

func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	return cache.Delete(ctx, basketKey(sessionID))
}
