package gutenberg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/Another0Noob/gutenberg-reader/internal/match"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// Letters are the title index pages scraped by FetchAllTitles.
const Letters = "abcdefghijklmnopqrstuvwxyz"

// FetchAllTitles scrapes every title index page and returns title -> book id.
// Pages answering with an error status are skipped; transport failures abort.
// When a title appears more than once the entry listed last wins.
func (c *Client) FetchAllTitles(ctx context.Context) (map[string]string, error) {
	pages := make([]map[string]string, len(Letters))

	var (
		mu   sync.Mutex
		done int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, letter := range Letters {
		g.Go(func() error {
			titles, err := c.FetchTitles(ctx, string(letter))
			if err != nil {
				var se *StatusError
				if !errors.Is(err, ErrNotFound) && !errors.As(err, &se) {
					return fmt.Errorf("titles %q: %w", letter, err)
				}
				slog.Warn("Skipping title index page", "letter", string(letter), "err", err)
			}
			pages[i] = titles

			mu.Lock()
			done++
			if c.progress != nil {
				c.progress(done, len(Letters))
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make(map[string]string)
	for _, p := range pages {
		for title, id := range p {
			all[title] = id
		}
	}
	slog.Info("Fetched title index", "titles", len(all))
	return all, nil
}

// FetchTitles scrapes the index page for one letter.
func (c *Client) FetchTitles(ctx context.Context, letter string) (map[string]string, error) {
	body, err := c.getPage(ctx, "/browse/titles/"+letter)
	if err != nil {
		return nil, err
	}
	titles, err := ParseTitles(body, c.language)
	if err != nil {
		return nil, fmt.Errorf("parse titles %q: %w", letter, err)
	}
	slog.Debug("Fetched title index page", "letter", letter, "titles", len(titles))
	return titles, nil
}

// ParseTitles extracts title -> book id from a title index page. Only <h2>
// entries whose text carries "(language)" are kept; the first link of each
// entry gives the title (its text) and the id (last segment of its href).
func ParseTitles(page []byte, language string) (map[string]string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	marker := "(" + language + ")"
	titles := make(map[string]string)
	for h2 := range findAll(doc, "h2") {
		if language != "" && !strings.Contains(textOf(h2), marker) {
			continue
		}
		a := findFirst(h2, "a")
		if a == nil {
			continue
		}
		title := match.CleanTitle(textOf(a))
		id := sourceID(attr(a, "href"))
		if title == "" || id == "" {
			continue
		}
		titles[title] = id
	}
	return titles, nil
}

// sourceID returns the last path segment of an ebook link ("/ebooks/2701" -> "2701").
func sourceID(href string) string {
	href = strings.TrimRight(href, "/")
	if href == "" {
		return ""
	}
	return path.Base(href)
}
