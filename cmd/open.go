/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// openCmd selects a book by exact title and prints its download link
func newOpenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <title>",
		Short: "Select a book by its exact title and print its download link",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}

			title := strings.Join(args, " ")
			a.selectBook(title)
			if !a.openBook(cmd.Context(), title) {
				return fmt.Errorf("open %q: no download link", title)
			}
			return nil
		},
	}
}

// lastCmd prints the last selected book
func newLastCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Print the last selected book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}

			last := a.index.LastSelection()
			if last == "" {
				fmt.Fprintln(a.out, "No book has been selected yet.")
				return nil
			}
			fmt.Fprintln(a.out, last)
			return nil
		},
	}
}
