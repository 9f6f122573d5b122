package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// SessionStore remembers revoked token ids until the token would have expired.
type SessionStore struct {
	client *redisv9.Client
}

func NewSessionStore(client *redisv9.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke session failed: %w", err)
	}
	return nil
}

func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check session failed: %w", err)
	}
	return n > 0, nil
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("session:revoked:%s", tokenID)
}
