package localstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisOpTimeout = 5 * time.Second

// RedisSet keeps the submitted-order set in a Redis set, for deployments
// where the client host has no durable filesystem.
type RedisSet struct {
	memSet
	rdb *redis.Client
	key string
}

// NewRedisSet connects, pings, and loads the set stored under key.
func NewRedisSet(addr, password string, db int, key string) (*RedisSet, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ids, err := rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load order set: %w", err)
	}

	r := &RedisSet{rdb: rdb, key: key}
	r.init(ids)
	return r, nil
}

// Add appends id to the Redis list before recording it in memory. A list
// is used rather than a set to preserve submission order.
func (r *RedisSet) Add(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.members[id]; dup {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.rdb.RPush(ctx, r.key, id).Err(); err != nil {
		return fmt.Errorf("failed to persist order id: %w", err)
	}
	r.add(id)
	return nil
}

// Close closes the Redis connection.
func (r *RedisSet) Close() error {
	return r.rdb.Close()
}
