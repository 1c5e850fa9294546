package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// keyPrefix namespaces mapping keys within a shared Redis database.
const keyPrefix = "corex:"

// RedisStore is a Redis-backed implementation of Store, used when a
// connection URL is configured. Entries are written without expiry:
// mappings are permanent.
type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisStore connects to Redis using a redis:// connection URL. A
// non-empty token overrides the password embedded in the URL, which is how
// managed providers hand out credentials.
func NewRedisStore(ctx context.Context, connURL, token string, log zerolog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(connURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if token != "" {
		opts.Password = token
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		log:    log.With().Str("component", "storage").Str("backend", "redis").Logger(),
	}, nil
}

// Put saves an identifier -> URL mapping without expiry.
func (r *RedisStore) Put(ctx context.Context, id, url string) error {
	if id == "" || url == "" {
		r.log.Warn().Str("corex_id", id).Msg("ignoring mapping with empty identifier or url")
		return nil
	}

	if err := r.client.Set(ctx, keyPrefix+id, url, 0).Err(); err != nil {
		return fmt.Errorf("failed to store mapping: %w", err)
	}
	return nil
}

// Get retrieves the original URL for an identifier.
func (r *RedisStore) Get(ctx context.Context, id string) (string, bool, error) {
	if id == "" {
		return "", false, nil
	}

	url, err := r.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to retrieve mapping: %w", err)
	}
	return url, true, nil
}

// Size returns the approximate number of stored mappings.
func (r *RedisStore) Size(ctx context.Context) int {
	var count int
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		r.log.Warn().Err(err).Msg("failed to count mappings")
		return 0
	}
	return count
}

// Ping verifies the Redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
