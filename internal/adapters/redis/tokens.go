package redisad

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore keeps revoked JWT IDs until the token would have expired
// anyway, so logout invalidates a bearer token without server-side sessions.
type TokenStore struct{ c *redis.Client }

func NewTokenStore(addr, pass string, db int) *TokenStore {
	return &TokenStore{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func revokedKey(jti string) string { return "revoked:" + jti }

func (s *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute // expired tokens still get a short tombstone
	}
	return s.c.Set(ctx, revokedKey(jti), "1", ttl).Err()
}

func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := s.c.Get(ctx, revokedKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
