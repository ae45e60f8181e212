package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var errNotCached = errors.New("no cached route table; start the application once to build it")

func routesCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the cached route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rc, store, _, err := routeCache(ctx, *configPath)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			_, table, ok := rc.Load(ctx)
			if !ok {
				return errNotCached
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(table.Routes())
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tHANDLER\tPARAMS")
			for _, r := range table.Routes() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.Method, r.Path, r.Handler, len(r.Params))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print routes as JSON")

	return cmd
}
