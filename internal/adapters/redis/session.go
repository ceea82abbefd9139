package redisad

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists small ordered string lists (search history,
// favorites) under "session:<id>:<name>".
type SessionStore struct {
	c  *redis.Client
	id string
}

func NewSessionStore(c *Cache, sessionID string) *SessionStore {
	return &SessionStore{c: c.c, id: sessionID}
}

func (s *SessionStore) key(name string) string {
	return fmt.Sprintf("session:%s:%s", s.id, name)
}

func (s *SessionStore) Load(ctx context.Context, name string) ([]string, error) {
	out, err := s.c.LRange(ctx, s.key(name), 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return out, err
}

// Save replaces the whole list atomically. An empty list deletes the key.
func (s *SessionStore) Save(ctx context.Context, name string, values []string) error {
	k := s.key(name)
	_, err := s.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, k)
		if len(values) > 0 {
			args := make([]any, len(values))
			for i, v := range values {
				args[i] = v
			}
			p.RPush(ctx, k, args...)
		}
		return nil
	})
	return err
}
