package library

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/Another0Noob/gutenberg-reader/internal/match"
	"github.com/Another0Noob/gutenberg-reader/internal/store"
)

var (
	// ErrInvalidSelection is returned when an empty title is selected.
	ErrInvalidSelection = errors.New("invalid selection: title is empty")
	// ErrNeedsRebuild is returned by Open when no snapshot could be loaded.
	// The returned Index is empty but usable.
	ErrNeedsRebuild = errors.New("library needs rebuild")
)

// Catalog maps a book title to its source identifier.
type Catalog map[string]string

// Storage persists snapshots. *store.Store implements it.
type Storage interface {
	Load() (store.Snapshot, error)
	Save(store.Snapshot) error
}

// Index owns the catalog and the last selected title. It is not safe for
// concurrent use.
type Index struct {
	storage  Storage
	books    Catalog
	titles   []string // sorted keys of books
	lastRead string
	strict   bool
}

type Option func(*Index)

// WithStrictMatching restricts ranking to titles containing the query's
// characters in order, falling back to the whole catalog when none do.
func WithStrictMatching(strict bool) Option {
	return func(ix *Index) { ix.strict = strict }
}

// Open loads the index from storage. When the snapshot is missing or broken
// the index starts empty and the error wraps both ErrNeedsRebuild and the
// storage error; callers decide whether to rebuild.
func Open(st Storage, opts ...Option) (*Index, error) {
	ix := &Index{storage: st, books: Catalog{}}
	for _, o := range opts {
		o(ix)
	}

	snap, err := st.Load()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.Info("No library snapshot found", "err", err)
			return ix, fmt.Errorf("%w: %w", ErrNeedsRebuild, err)
		}
		return ix, fmt.Errorf("load library: %w", err)
	}

	ix.lastRead = snap.LastRead
	ix.setBooks(snap.Books)
	return ix, nil
}

func (ix *Index) setBooks(c map[string]string) {
	ix.books = make(Catalog, len(c))
	maps.Copy(ix.books, c)
	ix.titles = slices.Sorted(maps.Keys(ix.books))
}

// Len returns the number of books in the catalog.
func (ix *Index) Len() int { return len(ix.books) }

// RankTitles returns up to limit titles closest to query, best first.
// An empty catalog yields an empty result.
func (ix *Index) RankTitles(query string, limit int) []string {
	ranked := ix.RankScored(query, limit)
	out := make([]string, len(ranked))
	for i, c := range ranked {
		out[i] = c.Title
	}
	return out
}

// RankScored is RankTitles with the edit distance of each title kept.
func (ix *Index) RankScored(query string, limit int) []match.Candidate {
	candidates := ix.titles
	if ix.strict {
		if narrowed := match.Subsequence(query, candidates); len(narrowed) > 0 {
			candidates = narrowed
		}
	}
	ranked := match.TopN(query, candidates, limit)
	slog.Debug("Ranked titles", "query", query, "scanned", len(candidates), "returned", len(ranked))
	return ranked
}

// Lookup returns the source identifier stored for title.
func (ix *Index) Lookup(title string) (string, bool) {
	id, ok := ix.books[title]
	return id, ok
}

// LastSelection returns the most recently selected title, or "" if none.
func (ix *Index) LastSelection() string { return ix.lastRead }

// SetLastSelection records title and saves immediately. Titles outside the
// catalog are accepted. If saving fails the new selection is kept in memory
// and the error is returned.
func (ix *Index) SetLastSelection(title string) error {
	if title == "" {
		return ErrInvalidSelection
	}
	ix.lastRead = title
	return ix.save()
}

// ReplaceCatalog swaps in c wholesale and saves immediately.
func (ix *Index) ReplaceCatalog(c Catalog) error {
	ix.setBooks(c)
	return ix.save()
}

func (ix *Index) save() error {
	snap := store.Snapshot{LastRead: ix.lastRead, Books: ix.books}
	if err := ix.storage.Save(snap); err != nil {
		return fmt.Errorf("save library: %w", err)
	}
	return nil
}
