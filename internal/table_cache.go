package internal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/ivupcn/restina-framework/pkg/cache"
)

// Keys persisted by RouteCache.
const (
	CacheKeyHandlers = "controller_classes"
	CacheKeyRoutes   = "routes"
	CacheKeyOpenAPI  = "openapi"

	DefaultRouteCacheTTL = 24 * time.Hour
)

// RouteCache persists the handler list and the compiled table in a byte
// cache. Every failure to read is a miss; every failure to write is logged
// and ignored.
type RouteCache struct {
	store  cache.Cache[[]byte]
	logger *slog.Logger
	group  singleflight.Group
	opts   []TableOption
	ttl    time.Duration
}

// NewRouteCache wraps store. A non-positive ttl selects DefaultRouteCacheTTL.
func NewRouteCache(store cache.Cache[[]byte], ttl time.Duration, logger *slog.Logger, opts ...TableOption) *RouteCache {
	if ttl <= 0 {
		ttl = DefaultRouteCacheTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RouteCache{store: store, ttl: ttl, logger: logger, opts: opts}
}

// Backend returns the underlying cache.
func (rc *RouteCache) Backend() cache.Cache[[]byte] { return rc.store }

// Load returns the cached handler list and table.
func (rc *RouteCache) Load(ctx context.Context) ([]string, *Table, bool) {
	rawHandlers, err := rc.store.Get(ctx, CacheKeyHandlers)
	if err != nil {
		rc.miss(ctx, CacheKeyHandlers, err)
		return nil, nil, false
	}
	var handlers []string
	if err := msgpack.Unmarshal(rawHandlers, &handlers); err != nil {
		rc.miss(ctx, CacheKeyHandlers, err)
		return nil, nil, false
	}

	rawRoutes, err := rc.store.Get(ctx, CacheKeyRoutes)
	if err != nil {
		rc.miss(ctx, CacheKeyRoutes, err)
		return nil, nil, false
	}
	table, err := UnmarshalTable(rawRoutes, rc.opts...)
	if err != nil {
		rc.miss(ctx, CacheKeyRoutes, err)
		return nil, nil, false
	}
	return handlers, table, true
}

// Store writes both keys and drops the derived OpenAPI document.
func (rc *RouteCache) Store(ctx context.Context, handlers []string, table *Table) {
	rawHandlers, err := msgpack.Marshal(handlers)
	if err != nil {
		rc.logger.WarnContext(ctx, "route cache encode failed", slog.String("key", CacheKeyHandlers), slog.String("error", err.Error()))
		return
	}
	rawRoutes, err := table.MarshalBinary()
	if err != nil {
		rc.logger.WarnContext(ctx, "route cache encode failed", slog.String("key", CacheKeyRoutes), slog.String("error", err.Error()))
		return
	}
	for key, val := range map[string][]byte{CacheKeyHandlers: rawHandlers, CacheKeyRoutes: rawRoutes} {
		if err := rc.store.Set(ctx, key, val, rc.ttl); err != nil {
			rc.logger.WarnContext(ctx, "route cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	if err := rc.store.Delete(ctx, CacheKeyOpenAPI); err != nil {
		rc.logger.DebugContext(ctx, "route cache delete failed", slog.String("key", CacheKeyOpenAPI), slog.String("error", err.Error()))
	}
}

// Clear removes every key written by the engine.
func (rc *RouteCache) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{CacheKeyHandlers, CacheKeyRoutes, CacheKeyOpenAPI} {
		if err := rc.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildFunc discovers routes from scratch.
type BuildFunc func(ctx context.Context) ([]string, *Table, error)

// LoadOrBuild returns the cached table when it passes live, otherwise
// builds and saves a fresh one. Concurrent callers share one build.
func (rc *RouteCache) LoadOrBuild(ctx context.Context, build BuildFunc, live func(*Table) bool) (*Table, bool, error) {
	if _, table, ok := rc.Load(ctx); ok {
		if live == nil || live(table) {
			rc.logger.DebugContext(ctx, "route cache hit", slog.Int("routes", table.Len()))
			return table, true, nil
		}
		rc.logger.InfoContext(ctx, "route cache stale, rebuilding")
	}

	v, err, _ := rc.group.Do(CacheKeyRoutes, func() (any, error) {
		handlers, table, err := build(ctx)
		if err != nil {
			return nil, err
		}
		rc.Store(ctx, handlers, table)
		return table, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Table), false, nil
}

func (rc *RouteCache) miss(ctx context.Context, key string, err error) {
	if errors.Is(err, cache.ErrNotFound) {
		rc.logger.DebugContext(ctx, "route cache miss", slog.String("key", key))
		return
	}
	rc.logger.DebugContext(ctx, "route cache unreadable", slog.String("key", key), slog.String("error", err.Error()))
}
