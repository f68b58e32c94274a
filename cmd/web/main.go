package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Another0Noob/gutenberg-reader/cmd"
)

// Runs the JSON API on its own; flags are those of "gutenberg-reader serve".
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cmd.NewRootCmd()
	root.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
