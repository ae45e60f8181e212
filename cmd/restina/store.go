package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	restina "github.com/ivupcn/restina-framework"
)

var errCacheDisabled = errors.New("route cache is disabled (app.cache is empty)")

// routeCache opens the cache configured at path. The caller closes the store.
func routeCache(ctx context.Context, path string) (*restina.RouteCache, *restina.Store, restina.Config, error) {
	cfg, err := restina.LoadConfig(path)
	if err != nil {
		return nil, nil, cfg, fmt.Errorf("load config: %w", err)
	}

	store, err := restina.OpenStore(ctx, cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		return nil, nil, cfg, fmt.Errorf("open cache: %w", err)
	}
	if store == nil {
		return nil, nil, cfg, errCacheDisabled
	}
	return restina.NewRouteCache(store.Cache, cfg.Cache.TTL, nil), store, cfg, nil
}
