package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"threads-accounts/internal/model"
)

type ProfileCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewProfileCache(client *redisv9.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &ProfileCache{client: client, ttl: ttl}
}

// GetByID looks up a profile by its canonical hex user id.
func (c *ProfileCache) GetByID(ctx context.Context, userID string) (*model.Profile, bool, error) {
	return c.get(ctx, idKey(userID))
}

func (c *ProfileCache) GetByUsername(ctx context.Context, username string) (*model.Profile, bool, error) {
	return c.get(ctx, usernameKey(username))
}

func (c *ProfileCache) get(ctx context.Context, key string) (*model.Profile, bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get profile failed: %w", err)
	}

	var profile model.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached profile failed: %w", err)
	}
	return &profile, true, nil
}

// SetProfile stores the profile under both its id and its username.
func (c *ProfileCache) SetProfile(ctx context.Context, profile model.Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile cache failed: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, idKey(profile.ID), payload, c.ttl)
	pipe.Set(ctx, usernameKey(profile.Username), payload, c.ttl)
	pipe.SAdd(ctx, aliasKey(profile.ID), profile.Username)
	pipe.Expire(ctx, aliasKey(profile.ID), c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set profile failed: %w", err)
	}
	return nil
}

// InvalidateUser drops every cached profile entry for userID.
func (c *ProfileCache) InvalidateUser(ctx context.Context, userID string) error {
	aliases, err := c.client.SMembers(ctx, aliasKey(userID)).Result()
	if err != nil && !errors.Is(err, redisv9.Nil) {
		return fmt.Errorf("redis read profile aliases failed: %w", err)
	}

	keys := []string{idKey(userID), aliasKey(userID)}
	for _, alias := range aliases {
		keys = append(keys, usernameKey(alias))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete profile failed: %w", err)
	}
	return nil
}

func idKey(userID string) string {
	return fmt.Sprintf("user:profile:id:%s", userID)
}

func usernameKey(username string) string {
	return fmt.Sprintf("user:profile:name:%s", username)
}

func aliasKey(userID string) string {
	return fmt.Sprintf("user:profile:aliases:%s", userID)
}
