package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var ErrCacheMiss = errors.New("cache miss")

// Cached decorates a Provider with a redis-backed cache for the remote
// lookups. Countries and states barely ever change, so cache errors are
// logged and the inner provider is consulted instead. Concurrent misses
// for the same key are collapsed with singleflight.
type Cached struct {
	inner   Provider
	client  *redis.Client
	baseTTL time.Duration
	log     *slog.Logger
	sfg     singleflight.Group
}

func NewCached(inner Provider, client *redis.Client, log *slog.Logger) *Cached {
	return &Cached{
		inner:   inner,
		client:  client,
		baseTTL: 12 * time.Hour,
		log:     log,
	}
}

func (c *Cached) Countries(ctx context.Context) ([]Country, error) {
	return lookup(ctx, c, "refdata:countries", func() ([]Country, error) {
		return c.inner.Countries(ctx)
	})
}

func (c *Cached) StatesByCountry(ctx context.Context, countryCode string) ([]State, error) {
	key := fmt.Sprintf("refdata:states:%s", countryCode)
	return lookup(ctx, c, key, func() ([]State, error) {
		return c.inner.StatesByCountry(ctx, countryCode)
	})
}

// Months and years are computed locally, nothing worth caching.

func (c *Cached) CreditCardMonths(ctx context.Context, startMonth int) ([]int, error) {
	return c.inner.CreditCardMonths(ctx, startMonth)
}

func (c *Cached) CreditCardYears(ctx context.Context) ([]int, error) {
	return c.inner.CreditCardYears(ctx)
}

func lookup[T any](ctx context.Context, c *Cached, key string, fetch func() ([]T, error)) ([]T, error) {
	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		cached, errGet := c.get(ctx, key)
		if errGet == nil {
			var values []T
			if errUnmarshal := json.Unmarshal(cached, &values); errUnmarshal == nil {
				return values, nil
			}
			// corrupt entry, fall through to the inner provider
		} else if !errors.Is(errGet, ErrCacheMiss) {
			c.log.Warn("refdata cache get failed", "key", key, "error", errGet)
		}

		values, errFetch := fetch()
		if errFetch != nil {
			return nil, errFetch
		}

		go func() {
			if errSet := c.set(context.Background(), key, values); errSet != nil {
				c.log.Warn("refdata cache set failed", "key", key, "error", errSet)
			}
		}()

		return values, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

func (c *Cached) get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (c *Cached) set(ctx context.Context, key string, values interface{}) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(30)) * time.Minute
	if err := c.client.Set(ctx, key, data, c.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
