package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"
)

var ErrNotFound = errors.New("record not found")

// Store owns every read/write against the users/{emailKey} tree. It is
// constructed once at startup and passed to each handler that needs it.
type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Client exposes the underlying connection for health checks.
func (s *Store) Client() *redis.Client {
	return s.rdb
}

func (s *Store) getJSON(ctx context.Context, key string, dst interface{}) error {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func (s *Store) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, data, 0).Err()
}
