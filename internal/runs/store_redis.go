package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "classroom:run:"
	maxUpdateRetries = 5
)

// RedisStore keeps runs as JSON values with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore parses url and returns a store whose keys expire after ttl.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func runKey(id string) string {
	return redisKeyPrefix + id
}

// Create stores a new run; it fails if the id already exists.
func (s *RedisStore) Create(ctx context.Context, run Run) error {
	raw, err := json.Marshal(run)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, runKey(run.ID), raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis create run: %w", err)
	}
	if !ok {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	return nil
}

// Get loads a run.
func (s *RedisStore) Get(ctx context.Context, id string) (Run, error) {
	raw, err := s.client.Get(ctx, runKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Run{}, ErrNotFound
		}
		return Run{}, fmt.Errorf("redis get run: %w", err)
	}
	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return Run{}, fmt.Errorf("decode run: %w", err)
	}
	return run, nil
}

// Update runs fn inside an optimistic WATCH/MULTI transaction, retrying on conflict.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Run) error) (Run, error) {
	key := runKey(id)
	var result Run
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}
		var run Run
		if err := json.Unmarshal(raw, &run); err != nil {
			return fmt.Errorf("decode run: %w", err)
		}
		if err := fn(&run); err != nil {
			return err
		}
		updated, err := json.Marshal(run)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.ttl)
			return nil
		})
		if err == nil {
			result = run
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return Run{}, err
	}
	return Run{}, fmt.Errorf("redis update run %s: too many conflicts", id)
}

var _ Store = (*RedisStore)(nil)
