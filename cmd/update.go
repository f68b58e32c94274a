/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// updateCmd rebuilds the catalog from the title index pages
func newUpdateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Rebuild the local catalog from Project Gutenberg",
		Long: `Scrapes every title index page on Project Gutenberg and replaces the local
catalog with the books listed in the configured language. The last selected
book is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, "--- Updating Catalog ---")
			if err := a.rebuild(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Update finished! %d titles in the library.\n", a.index.Len())
			return nil
		},
	}
}
