package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Another0Noob/gutenberg-reader/internal/config"
	"github.com/Another0Noob/gutenberg-reader/internal/gutenberg"
	"github.com/Another0Noob/gutenberg-reader/internal/library"
	"github.com/Another0Noob/gutenberg-reader/internal/store"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// app wires the library index to the Gutenberg client for one invocation.
type app struct {
	cfg    config.Config
	index  *library.Index
	client *gutenberg.Client
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader
	bar    *progressbar.ProgressBar

	// onUpdate, if set, also receives rebuild progress
	onUpdate func(done, total int)
}

// newApp loads configuration and the library. When no snapshot exists and
// rebuildIfMissing is set, the catalog is scraped before returning.
func newApp(cmd *cobra.Command, opts *rootOptions, rebuildIfMissing bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.Library.Path = opts.dbPath
	}
	if opts.baseURL != "" {
		cfg.Gutenberg.BaseURL = opts.baseURL
	}

	a := &app{
		cfg:    cfg,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		in:     bufio.NewReader(cmd.InOrStdin()),
	}
	a.client = gutenberg.NewClient(
		gutenberg.WithBaseURL(cfg.Gutenberg.BaseURL),
		gutenberg.WithLanguage(cfg.Gutenberg.Language),
		gutenberg.WithRateLimit(cfg.Gutenberg.RequestsPerSecond),
		gutenberg.WithWorkers(cfg.Gutenberg.Workers),
		gutenberg.WithProgress(a.onProgress),
	)

	index, err := library.Open(
		store.New(cfg.Library.Path),
		library.WithStrictMatching(cfg.Library.Strict),
	)
	a.index = index
	switch {
	case err == nil:
	case errors.Is(err, library.ErrNeedsRebuild):
		if !rebuildIfMissing {
			break
		}
		fmt.Fprintln(a.out, "No database could be found. Update required")
		fmt.Fprintln(a.out, "Currently updating, please wait...")
		if err := a.rebuild(cmd.Context()); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return a, nil
}

func (a *app) onProgress(done, total int) {
	if a.onUpdate != nil {
		a.onUpdate(done, total)
	}
	if a.bar == nil {
		return
	}
	a.bar.ChangeMax(total)
	_ = a.bar.Set(done)
}

// rebuild scrapes the full catalog and replaces the index with it. A failed
// save is reported but not fatal: the new catalog stays usable in memory.
func (a *app) rebuild(ctx context.Context) error {
	a.bar = progressbar.NewOptions(len(gutenberg.Letters),
		progressbar.OptionSetWriter(a.errOut),
		progressbar.OptionSetDescription("Fetching titles"),
		progressbar.OptionClearOnFinish(),
	)
	defer func() {
		_ = a.bar.Finish()
		a.bar = nil
	}()

	titles, err := a.client.FetchAllTitles(ctx)
	if err != nil {
		return fmt.Errorf("update catalog: %w", err)
	}
	if len(titles) == 0 {
		slog.Warn("Catalog update returned no titles", "base_url", a.client.BaseURL())
	}

	if err := a.index.ReplaceCatalog(titles); err != nil {
		slog.Error("Unable to save catalog", "err", err)
		fmt.Fprintln(a.errOut, "Warning: the catalog was updated but could not be saved.")
	}
	return nil
}

// openBook prints the download link for title. It reports failures to the
// user and returns whether a link was printed.
func (a *app) openBook(ctx context.Context, title string) bool {
	id, ok := a.index.Lookup(title)
	if !ok {
		fmt.Fprintln(a.out, "Looks like there was a problem opening the book")
		fmt.Fprintln(a.out, "Please update the program and try it again")
		return false
	}

	link, err := a.client.ResolveDownloadURL(ctx, id)
	if err != nil {
		if errors.Is(err, gutenberg.ErrNotFound) {
			fmt.Fprintln(a.out, "Unable to find a file for the book")
		}
		slog.Warn("Unable to resolve book", "title", title, "id", id, "err", err)
		return false
	}

	fmt.Fprintln(a.out, link)
	return true
}

// selectBook records title as the last read book, warning if it could not be saved.
func (a *app) selectBook(title string) {
	if err := a.index.SetLastSelection(title); err != nil {
		slog.Error("Unable to save selection", "title", title, "err", err)
		fmt.Fprintln(a.errOut, "Warning: your selection could not be saved.")
	}
}

func (a *app) limit(flag int) int {
	if flag > 0 {
		return flag
	}
	return a.cfg.Library.Limit
}
