package main

import (
	"github.com/spf13/cobra"
)

func cacheCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the route cache",
	}
	cmd.AddCommand(cacheClearCmd(configPath))
	return cmd
}

func cacheClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached route table and OpenAPI document",
		Long: `Remove every key the engine writes to the configured cache. The next
application start discovers routes again.

Run it after deploying changed endpoints when the cache outlives the
process (file and redis drivers).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rc, store, cfg, err := routeCache(ctx, *configPath)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			if store.Driver != cfg.CacheDriver() {
				warn(cmd, "%s unavailable, cleared the %s fallback", cfg.CacheDriver(), store.Driver)
			}
			if err := rc.Clear(ctx); err != nil {
				return err
			}
			success(cmd, "route cache cleared (%s)", store.Driver)
			return nil
		},
	}
}
