package internal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivupcn/restina-framework/internal"
	"github.com/ivupcn/restina-framework/pkg/config"
)

func TestOpenStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		t.Parallel()

		s, err := internal.OpenStore(ctx, config.Default(), nil)
		require.NoError(t, err)
		assert.Nil(t, s)
		require.NoError(t, s.Close(ctx))
	})

	t.Run("memory", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.App.Cache = config.CacheMemory
		s, err := internal.OpenStore(ctx, cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, config.CacheMemory, s.Driver)
		assert.Nil(t, s.Ready)
		require.NoError(t, s.Cache.Set(ctx, "k", []byte("v"), time.Minute))
		require.NoError(t, s.Close(ctx))
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.App.Cache = config.CacheFile
		cfg.Cache.Dir = t.TempDir()
		s, err := internal.OpenStore(ctx, cfg, nil)
		require.NoError(t, err)
		defer s.Close(ctx)

		assert.Equal(t, config.CacheFile, s.Driver)
		require.NoError(t, s.Cache.Set(ctx, "k", []byte("v"), time.Minute))
		got, err := s.Cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("unreachable redis falls back to file", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.App.Cache = config.CacheRedis
		cfg.Redis.URL = "redis://127.0.0.1:1/0"
		cfg.Cache.Dir = t.TempDir()
		s, err := internal.OpenStore(ctx, cfg, nil)
		require.NoError(t, err)
		defer s.Close(ctx)

		assert.Equal(t, config.CacheFile, s.Driver)
	})
}
