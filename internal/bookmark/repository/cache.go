package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlibekovAA/linkmark/internal/common/constants"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
)

const keyPrefixMissingCode = "linkmark:redirect:miss:"

// MissCache remembers short codes that resolved to nothing so repeated probes
// for unknown codes do not reach the database.
type MissCache interface {
	IsMissing(ctx context.Context, code string) (bool, error)
	MarkMissing(ctx context.Context, code string) error
	Forget(ctx context.Context, code string) error
}

func MissingCodeKey(code string) string {
	return keyPrefixMissingCode + code
}

type RedisMissCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMissCache(client *redis.Client, ttl time.Duration) *RedisMissCache {
	if ttl <= 0 {
		ttl = constants.DefaultRedirectMissTTL
	}
	return &RedisMissCache{client: client, ttl: ttl}
}

func (c *RedisMissCache) IsMissing(ctx context.Context, code string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RedirectMissCacheTimeout)
	defer cancel()

	n, err := c.client.Exists(ctx, MissingCodeKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read miss cache: %w", err)
	}
	return n > 0, nil
}

func (c *RedisMissCache) MarkMissing(ctx context.Context, code string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RedirectMissCacheTimeout)
	defer cancel()

	if err := c.client.Set(ctx, MissingCodeKey(code), 1, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write miss cache: %w", err)
	}
	return nil
}

func (c *RedisMissCache) Forget(ctx context.Context, code string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RedirectMissCacheTimeout)
	defer cancel()

	if err := c.client.Del(ctx, MissingCodeKey(code)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to clear miss cache: %w", err)
	}
	return nil
}

func (c *RedisMissCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisMissCache) Close() error {
	return c.client.Close()
}

// NoopMissCache is used when no Redis address is configured.
type NoopMissCache struct{}

func (NoopMissCache) IsMissing(context.Context, string) (bool, error) { return false, nil }
func (NoopMissCache) MarkMissing(context.Context, string) error       { return nil }
func (NoopMissCache) Forget(context.Context, string) error             { return nil }

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings with a bounded number of attempts.
func NewRedisClient(ctx context.Context, opts RedisOptions, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  constants.RedisDialTimeout,
		ReadTimeout:  constants.RedisReadTimeout,
		WriteTimeout: constants.RedisWriteTimeout,
	})

	var err error
	wait := constants.RedisRetryInterval
	for attempt := 1; attempt <= constants.RedisConnectAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, constants.RedisDialTimeout)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Infof("connected to redis at %s", opts.Addr)
			return client, nil
		}

		log.Warnf("redis connection failed (attempt %d/%d): %v", attempt, constants.RedisConnectAttempts, err)

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	_ = client.Close()
	return nil, fmt.Errorf("redis unavailable at %s after %d attempts: %w", opts.Addr, constants.RedisConnectAttempts, err)
}
