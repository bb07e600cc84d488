// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"talents/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis initializes the Redis client with the given address or URL.
// The service keeps running without a cache when Redis is unreachable.
func InitRedis(addr string) *redis.Client {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			observability.GlobalLogger.Warn("invalid REDIS_URL, continuing without cache", "error", err)
			client = nil
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		observability.GlobalLogger.Warn("redis unavailable, continuing without cache", "error", err)
		_ = c.Close()
		client = nil
		return nil
	}
	observability.GlobalLogger.Info("redis connected")
	client = c
	return c
}

// SetClient replaces the shared client. Tests point it at miniredis.
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(metricsHook{})
	}
	client = c
}

// Entries are hashes holding the encoded value and the version of the source
// row it was read from, so a slow reader cannot replace a newer write.
const (
	versionField = "v"
	dataField    = "d"

	versionedSetAttempts = 3
)

// GetJSON loads the value stored under key into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.HGet(ctx, key, dataField).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSONIfNewer stores v with ttl unless key already holds a version at or
// above version. Concurrent writers are resolved with WATCH and retried.
func SetJSONIfNewer(ctx context.Context, key string, v any, version int64, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < versionedSetAttempts; attempt++ {
		err = client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.HGet(ctx, key, versionField).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil && current >= version {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, versionField, version, dataField, b)
				pipe.Expire(ctx, key, ttl)
				return nil
			})
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// Aside tries Redis first. On a miss it calls fetch, which must populate dest
// and return the version of what it read, then stores the result with ttl.
// Cache read and write failures fall through to the source.
func Aside(ctx context.Context, name, key string, dest any, ttl time.Duration, fetch func() (int64, error)) error {
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "aside."+name)
	defer span.End()

	found, err := GetJSON(ctx, key, dest)
	if err == nil && found {
		observability.CacheLookups.WithLabelValues(name, "hit").Inc()
		return nil
	}
	observability.CacheLookups.WithLabelValues(name, "miss").Inc()

	version, err := fetch()
	if err != nil {
		return err
	}

	_ = SetJSONIfNewer(ctx, key, dest, version, ttl)
	return nil
}
