package main

import (
	"fmt"

	"github.com/spf13/cobra"

	restina "github.com/ivupcn/restina-framework"
)

func configCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the application config",
	}
	cmd.AddCommand(configCheckCmd(configPath))
	return cmd
}

func configCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := restina.LoadConfig(*configPath)
			if err != nil {
				return err
			}

			driver := cfg.CacheDriver()
			if driver == "" {
				driver = "none"
			}
			success(cmd, "%s is valid", *configPath)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  app:    %s (debug=%t)\n", cfg.App.Name, cfg.App.Debug)
			fmt.Fprintf(out, "  cache:  %s\n", driver)
			fmt.Fprintf(out, "  listen: %s\n", cfg.Server.Address)
			if !cfg.Hooks.Empty() {
				fmt.Fprintf(out, "  hooks:  %d actions, %d filters\n", len(cfg.Hooks.Actions), len(cfg.Hooks.Filters))
			}
			return nil
		},
	}
}
