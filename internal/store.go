package internal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ivupcn/restina-framework/pkg/cache"
	"github.com/ivupcn/restina-framework/pkg/config"
	"github.com/ivupcn/restina-framework/pkg/health"
	"github.com/ivupcn/restina-framework/pkg/logger"
	"github.com/ivupcn/restina-framework/pkg/redis"
)

// Store is a route cache backend opened from configuration.
type Store struct {
	Cache cache.Cache[[]byte]
	// Ready pings the backing server; nil for local drivers.
	Ready health.CheckFunc
	// Driver is the driver actually in use, which differs from the
	// configured one after a redis fallback.
	Driver string
	close  []func(context.Context) error
}

// Close releases the cache and any connection it owns.
func (s *Store) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, fn := range s.close {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.close = nil
	return errors.Join(errs...)
}

// OpenStore opens the backend selected by app.cache. It returns nil when
// caching is disabled. An unreachable redis server falls back to the file
// driver with a warning.
func OpenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNope()
	}
	ttl := cfg.Cache.TTL

	switch cfg.CacheDriver() {
	case config.CacheNone:
		return nil, nil

	case config.CacheMemory:
		m := cache.NewMemory[[]byte](cache.WithDefaultTTL(ttl))
		return &Store{Cache: m, Driver: config.CacheMemory, close: []func(context.Context) error{closer(m)}}, nil

	case config.CacheRedis:
		client, err := redis.Open(ctx, cfg.Redis.URL,
			redis.WithLogger(log),
			redis.WithRetry(2, 200*time.Millisecond),
		)
		if err == nil {
			rc := cache.NewRedis[[]byte](client, cache.BytesMarshaler{},
				cache.WithPrefix(cfg.Redis.Prefix),
				cache.WithRedisDefaultTTL(ttl),
			)
			return &Store{
				Cache:  rc,
				Driver: config.CacheRedis,
				Ready:  redis.Healthcheck(client),
				close:  []func(context.Context) error{closer(rc), redis.Shutdown(client)},
			}, nil
		}
		log.Warn("redis unavailable, falling back to file cache",
			slog.String("error", err.Error()),
			slog.String("dir", cfg.Cache.Dir),
		)
		fallthrough

	default:
		f, err := cache.NewFile[[]byte](cfg.Cache.Dir, cache.BytesMarshaler{}, cache.WithFileDefaultTTL(ttl))
		if err != nil {
			return nil, err
		}
		return &Store{Cache: f, Driver: config.CacheFile, close: []func(context.Context) error{closer(f)}}, nil
	}
}

func closer(c interface{ Close() error }) func(context.Context) error {
	return func(context.Context) error { return c.Close() }
}

// openRouteCache wires the route cache from WithRouteCache or app.cache.
func (a *App) openRouteCache(ctx context.Context) error {
	if !a.cacheSet {
		s, err := OpenStore(ctx, a.config, a.logger)
		if err != nil {
			return err
		}
		if s != nil {
			a.ownedStore = s
			a.store = s.Cache
			if s.Ready != nil && a.healthConfig != nil {
				WithReadinessCheck("cache", s.Ready)(a.healthConfig)
			}
		}
	}
	if a.store == nil {
		return nil
	}

	ttl := a.cacheTTL
	if ttl <= 0 {
		ttl = a.config.Cache.TTL
	}
	a.routeCache = NewRouteCache(a.store, ttl, a.logger, WithDuplicatePolicy(a.duplicates))
	return nil
}

// closeStore closes a store opened from configuration. Caches passed to
// WithRouteCache belong to the caller.
func (a *App) closeStore(ctx context.Context) error {
	if a.ownedStore == nil {
		return nil
	}
	return a.ownedStore.Close(ctx)
}
