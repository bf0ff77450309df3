package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"thalia/internal/model"
)

// SessionCache handles Redis operations for chat-session routing state.
type SessionCache interface {
	SetMeta(ctx context.Context, meta *model.SessionMeta) error
	GetMeta(ctx context.Context, sessionID string) (*model.SessionMeta, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a new session cache.
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    24 * time.Hour, // idle sessions expire after a day
	}
}

func (c *sessionCache) key(sessionID string) string {
	return "chat:session:" + sessionID
}

func (c *sessionCache) SetMeta(ctx context.Context, meta *model.SessionMeta) error {
	meta.UpdatedAt = time.Now()
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(meta.SessionID), data, c.ttl).Err()
}

func (c *sessionCache) GetMeta(ctx context.Context, sessionID string) (*model.SessionMeta, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta model.SessionMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *sessionCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.key(sessionID)).Err()
}
