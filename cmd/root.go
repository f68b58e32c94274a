package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	baseURL    string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gutenberg-reader",
		Short: "Find a Project Gutenberg book by approximate title",
		Long: `gutenberg-reader keeps a local index of the English titles on Project Gutenberg,
suggests the closest titles for whatever you type, and prints a link to the
plain-text file of the book you pick.

Run without a subcommand for an interactive session.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), opts.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			return a.runSession(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to the library snapshot (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Project Gutenberg site or mirror (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(newUpdateCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newOpenCmd(opts))
	cmd.AddCommand(newLastCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
