package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Another0Noob/gutenberg-reader/web/backend"
)

const shutdownTimeout = 5 * time.Second

func HandleBack(mux *http.ServeMux, api *backend.LibraryAPI) {
	mux.HandleFunc("GET /api/search", api.HandleSearch)
	mux.HandleFunc("GET /api/last", api.HandleGetLast)
	mux.HandleFunc("PUT /api/last", api.HandleSetLast)
	mux.HandleFunc("GET /api/books/url", api.HandleBookURL)
	mux.HandleFunc("POST /api/update", api.HandleUpdate)
	mux.HandleFunc("GET /api/update/progress", api.HandleProgress)
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// RunServer serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func RunServer(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           backend.WithRequestID(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "err", err)
			return err
		}
		slog.Info("Server exited gracefully")
		return nil
	case err := <-serverErr:
		return err
	}
}
