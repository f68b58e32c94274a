/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var limit int
	var scores bool

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "List the catalog titles closest to a title",
		Example: `  # Five closest titles
  gutenberg-reader search moby dick

  # Ten closest, with their edit distance
  gutenberg-reader search --limit 10 --scores "pride and prejudce"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			ranked := a.index.RankScored(query, a.limit(limit))
			if len(ranked) == 0 {
				fmt.Fprintln(a.out, "No titles found. Try running update first.")
				return nil
			}
			for i, c := range ranked {
				if scores {
					fmt.Fprintf(a.out, "%d. %s (%d)\n", i+1, c.Title, c.Score)
					continue
				}
				fmt.Fprintf(a.out, "%d. %s\n", i+1, c.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of suggestions (default from config)")
	cmd.Flags().BoolVar(&scores, "scores", false, "show the edit distance of each title")

	return cmd
}
