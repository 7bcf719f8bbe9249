package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each collection under <prefix>:<collection>. All
// collections of a snapshot go out in one MSET, which redis applies
// atomically.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "booking"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(c Collection) string {
	return s.prefix + ":" + string(c)
}

func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	pairs := make([]any, 0, 2*len(Collections))
	for _, c := range Collections {
		data, ok := snap[c]
		if !ok {
			continue
		}
		pairs = append(pairs, s.key(c), string(data))
	}
	if len(pairs) == 0 {
		return nil
	}
	if err := s.client.MSet(ctx, pairs...).Err(); err != nil {
		return fmt.Errorf("redis save snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	keys := make([]string, len(Collections))
	for i, c := range Collections {
		keys[i] = s.key(c)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load snapshot: %w", err)
	}

	snap := make(Snapshot, len(Collections))
	for i, v := range values {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("redis load %s: unexpected value type %T", Collections[i], v)
		}
		snap[Collections[i]] = []byte(str)
	}
	return snap, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
