/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"net/http"

	"github.com/Another0Noob/gutenberg-reader/web"
	"github.com/Another0Noob/gutenberg-reader/web/backend"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library over a local JSON API",
		Long: `Starts an HTTP server exposing search, the last selection, download links
and catalog updates as JSON endpoints.`,
		Example: `  # Listen on the configured address (default :39039)
  gutenberg-reader serve

  # Listen on a custom address
  gutenberg-reader serve --addr 127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			api := backend.NewLibraryAPI(a.index, a.client, a.client, a.cfg.Library.Limit)
			a.onUpdate = api.ReportProgress
			mux := http.NewServeMux()
			web.HandleBack(mux, api)
			return web.RunServer(cmd.Context(), addr, mux)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default from config)")

	return cmd
}
