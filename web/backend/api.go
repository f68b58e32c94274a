package backend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/Another0Noob/gutenberg-reader/internal/library"
)

// Resolver turns a book id into a download link.
type Resolver interface {
	ResolveDownloadURL(ctx context.Context, id string) (string, error)
}

// Builder scrapes a fresh catalog.
type Builder interface {
	FetchAllTitles(ctx context.Context) (map[string]string, error)
}

// LibraryAPI exposes a library.Index over HTTP.
type LibraryAPI struct {
	// index is not safe for concurrent use; every handler holds mu.
	mu    sync.Mutex
	index *library.Index

	resolver Resolver
	builder  Builder
	limit    int

	// held for the duration of a catalog rebuild
	updateMu sync.Mutex

	progressMu sync.Mutex
	progress   UpdateProgress

	// progress SSE subscribers
	subs   map[chan struct{}]struct{}
	subsMu sync.Mutex
}

func NewLibraryAPI(index *library.Index, resolver Resolver, builder Builder, limit int) *LibraryAPI {
	return &LibraryAPI{
		index:    index,
		resolver: resolver,
		builder:  builder,
		limit:    limit,
		subs:     make(map[chan struct{}]struct{}),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Unable to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// HandleSearch ranks catalog titles against a query.
// GET /api/search?q=...&limit=N
// Response: {"titles": [...]}
func (api *LibraryAPI) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := api.limit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	api.mu.Lock()
	titles := api.index.RankTitles(query, limit)
	api.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string][]string{"titles": titles})
}

// HandleGetLast returns the last selected title ("" if none).
// GET /api/last
func (api *LibraryAPI) HandleGetLast(w http.ResponseWriter, r *http.Request) {
	api.mu.Lock()
	title := api.index.LastSelection()
	api.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

// HandleSetLast records a selection.
// PUT /api/last  body: {"title": "..."}
func (api *LibraryAPI) HandleSetLast(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	api.mu.Lock()
	err := api.index.SetLastSelection(body.Title)
	api.mu.Unlock()

	switch {
	case errors.Is(err, library.ErrInvalidSelection):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		slog.Error("Unable to save selection", "request_id", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "selection recorded but not saved")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleBookURL resolves a title to its plain-text download link.
// GET /api/books/url?title=...
func (api *LibraryAPI) HandleBookURL(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")

	api.mu.Lock()
	id, ok := api.index.Lookup(title)
	api.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "title not in library")
		return
	}

	link, err := api.resolver.ResolveDownloadURL(r.Context(), id)
	if err != nil {
		slog.Warn("Unable to resolve book", "request_id", RequestID(r.Context()), "title", title, "err", err)
		writeError(w, http.StatusNotFound, "no text file for this book")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

// HandleUpdate rebuilds the catalog.
// POST /api/update
// Response: {"count": N}
func (api *LibraryAPI) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !api.updateMu.TryLock() {
		writeError(w, http.StatusConflict, "update already running")
		return
	}
	defer api.updateMu.Unlock()

	api.setRunning(true)
	defer api.setRunning(false)

	titles, err := api.builder.FetchAllTitles(r.Context())
	if err != nil {
		slog.Error("Catalog update failed", "request_id", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusBadGateway, "catalog update failed")
		return
	}

	api.mu.Lock()
	err = api.index.ReplaceCatalog(titles)
	count := api.index.Len()
	api.mu.Unlock()

	if err != nil {
		slog.Error("Unable to save catalog", "request_id", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "catalog updated but not saved")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
