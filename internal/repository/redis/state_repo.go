package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vikrantan5/FitSphere-sub000/internal/config"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
)

const keyPrefix = "fitsphere:state:"

// NewClient creates a Redis client from configuration.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// Ping checks the connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// redisStateRepository keeps one hash per browser session. Every write
// pushes the expiry forward so idle sessions disappear on their own.
type redisStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStateRepository creates a Redis backed state store.
func NewStateRepository(client *redis.Client, ttl time.Duration) repository.StateStore {
	return &redisStateRepository{client: client, ttl: ttl}
}

func hashKey(sid string) string {
	return keyPrefix + sid
}

func (r *redisStateRepository) Get(ctx context.Context, sid, key string) ([]byte, error) {
	v, err := r.client.HGet(ctx, hashKey(sid), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *redisStateRepository) Set(ctx context.Context, sid, key string, value []byte) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, hashKey(sid), key, value)
	if r.ttl > 0 {
		pipe.Expire(ctx, hashKey(sid), r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisStateRepository) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.HDel(ctx, hashKey(sid), keys...).Err()
}
