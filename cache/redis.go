package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBackend mirrors compilation-database entries (small JSON blobs) into
// a Redis instance, letting a cold checkout on one machine reuse another
// machine's skip decisions for the same source/flags/dependency fingerprint.
// Object artifacts are deliberately not mirrored here: they're typically
// too large for a hot-path key/value store and belong in S3Backend instead.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend dials addr and verifies connectivity before returning.
func NewRedisBackend(addr, password string, db int, ttl time.Duration) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisBackend{client: client, ttl: ttl}, nil
}

func (r *RedisBackend) GetCompDB(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, "compdb:"+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis cache: get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisBackend) PutCompDB(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, "compdb:"+key, data, r.ttl).Err()
}

// GetObject is unsupported by the redis tier; object artifacts belong in
// S3Backend.
func (r *RedisBackend) GetObject(ctx context.Context, key string, dst string) error {
	return ErrNotFound
}

func (r *RedisBackend) PutObject(ctx context.Context, key string, src string) error {
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
