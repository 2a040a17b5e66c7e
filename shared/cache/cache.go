package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"voyage/infras/otel"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	scopeName    = "cache"
	keyAttribute = "cache.key"
	scanBatch    = 100
)

// Nil is returned (wrapped) by Get on a miss.
const Nil = redis.Nil

// RedisCache stores JSON snapshots with a TTL in seconds. Strings are stored
// raw so other clients can read them.
type RedisCache interface {
	Save(ctx context.Context, key string, value any, ttlSeconds int) error
	Get(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context, pattern string) error
	Increment(ctx context.Context, key string, ttlSeconds int) (int64, error)
}

type redisCache struct {
	client *redis.Client
	otel   otel.Otel
}

func NewRedisCache(client *redis.Client, ot otel.Otel) RedisCache {
	return &redisCache{
		client: client,
		otel:   ot,
	}
}

func (c *redisCache) scope(ctx context.Context, op, key string) (context.Context, otel.Scope) {
	ctx, scope := c.otel.NewScope(ctx, scopeName, scopeName+"."+op)
	scope.SetAttribute(keyAttribute, key)

	return ctx, scope
}

// Clear removes every key matching pattern, a SCAN glob.
func (c *redisCache) Clear(ctx context.Context, pattern string) (err error) {
	ctx, scope := c.scope(ctx, "Clear", pattern)
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return err
		}

		batch = batch[:0]

		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) < scanBatch {
			continue
		}

		if err = flush(); err != nil {
			log.Error().Err(err).Str("pattern", pattern).Msg("Failed to clear cache")

			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}

	if err = iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache: %w", err)
	}

	if err = flush(); err != nil {
		log.Error().Err(err).Str("pattern", pattern).Msg("Failed to clear cache")

		return fmt.Errorf("failed to clear cache: %w", err)
	}

	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) (err error) {
	ctx, scope := c.scope(ctx, "Delete", key)
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	if err = c.client.Del(ctx, key).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to delete cache")

		return fmt.Errorf("failed to delete cache value: %w", err)
	}

	return nil
}

// Get decodes the stored value into value. A miss returns an error wrapping
// Nil and is not traced as a failure.
func (c *redisCache) Get(ctx context.Context, key string, value any) (err error) {
	ctx, scope := c.scope(ctx, "Get", key)
	defer scope.End()

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, Nil) {
			scope.TraceError(err)
		}

		return fmt.Errorf("failed to get cache value: %w", err)
	}

	if target, ok := value.(*string); ok {
		*target = string(raw)

		return nil
	}

	if err = json.Unmarshal(raw, value); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("key", key).Msg("Failed to decode cache value")

		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

func (c *redisCache) Save(ctx context.Context, key string, value any, ttlSeconds int) (err error) {
	ctx, scope := c.scope(ctx, "Save", key)
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	var payload []byte

	switch v := value.(type) {
	case string:
		payload = []byte(v)
	case []byte:
		payload = v
	default:
		if payload, err = json.Marshal(v); err != nil {
			log.Error().Err(err).Str("key", key).Msg("Failed to encode cache value")

			return fmt.Errorf("failed to marshal cache value: %w", err)
		}
	}

	if err = c.client.Set(ctx, key, payload, time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to set cache")

		return fmt.Errorf("failed to set cache value: %w", err)
	}

	log.Debug().Str("key", key).Int("ttl", ttlSeconds).Msg("Cache saved")

	return nil
}

// Increment bumps a counter and returns the new value. The TTL is set only
// when the counter is created, so a window is never extended by later hits.
func (c *redisCache) Increment(ctx context.Context, key string, ttlSeconds int) (count int64, err error) {
	ctx, scope := c.scope(ctx, "Increment", key)
	defer func() {
		scope.TraceIfError(err)
		scope.End()
	}()

	if count, err = c.client.Incr(ctx, key).Result(); err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	if count == 1 && ttlSeconds > 0 {
		if err = c.client.Expire(ctx, key, time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
			return count, fmt.Errorf("failed to set counter window: %w", err)
		}
	}

	return count, nil
}
