package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	restina "github.com/ivupcn/restina-framework"
	"github.com/ivupcn/restina-framework/pkg/openapi"
)

func openapiCmd(configPath *string) *cobra.Command {
	var (
		format  string
		output  string
		title   string
		version string
		server  string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Generate the OpenAPI document from the cached route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rc, store, cfg, err := routeCache(ctx, *configPath)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			_, table, ok := rc.Load(ctx)
			if !ok {
				return errNotCached
			}

			if title == "" {
				title = cfg.App.Name
			}
			opts := []openapi.Option{openapi.WithTitle(title), openapi.WithVersion(version)}
			if server != "" {
				opts = append(opts, openapi.WithServer(server, ""))
			}
			doc := restina.OpenAPIDocument(table.Routes(), opts...)

			var data []byte
			switch format {
			case "json":
				data, err = doc.JSON()
			case "yaml", "yml":
				data, err = doc.YAML()
			default:
				return fmt.Errorf("unknown format %q (json, yaml)", format)
			}
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			success(cmd, "wrote %s (%d operations)", output, doc.Operations())
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "API title (default: app.name)")
	cmd.Flags().StringVar(&version, "api-version", "1.0.0", "API version")
	cmd.Flags().StringVar(&server, "server", "", "Server URL")

	return cmd
}
