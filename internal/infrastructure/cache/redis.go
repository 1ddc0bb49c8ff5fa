package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"renodevis/internal/domain/catalog"
	"renodevis/pkg/logger"
)

// DefaultSnapshotKey is the Redis key holding the encoded catalog.
const DefaultSnapshotKey = "renodevis:catalog:v1"

// NewRedisClient parses a redis:// or rediss:// URL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisSnapshotStore shares the catalog snapshot between API instances.
type RedisSnapshotStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisSnapshotStore stores the snapshot under key with the given ttl.
// A zero ttl keeps the value until it is deleted.
func NewRedisSnapshotStore(client redis.Cmdable, key string, ttl time.Duration) *RedisSnapshotStore {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &RedisSnapshotStore{client: client, key: key, ttl: ttl}
}

// Get returns (nil, nil) on a miss. Undecodable values count as a miss and
// are removed.
func (s *RedisSnapshotStore) Get(ctx context.Context) (*catalog.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		logger.Warn(ctx, "dropping unreadable catalog snapshot", "key", s.key, "error", err)
		_ = s.client.Del(ctx, s.key).Err()
		return nil, nil
	}
	return snap, nil
}

// Set writes the snapshot.
func (s *RedisSnapshotStore) Set(ctx context.Context, snap *catalog.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode catalog snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Delete removes the snapshot.
func (s *RedisSnapshotStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}
