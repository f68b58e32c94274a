package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// UpdateProgress is the state of the current catalog rebuild.
type UpdateProgress struct {
	Running bool `json:"running"`
	Done    int  `json:"done"`
	Total   int  `json:"total"`
}

// ReportProgress records how many browse pages a running rebuild has fetched.
// It matches the callback shape of gutenberg.WithProgress.
func (api *LibraryAPI) ReportProgress(done, total int) {
	api.progressMu.Lock()
	defer api.progressMu.Unlock()
	api.progress.Done = done
	api.progress.Total = total
	api.broadcastLocked()
}

func (api *LibraryAPI) setRunning(running bool) {
	api.progressMu.Lock()
	defer api.progressMu.Unlock()
	api.progress.Running = running
	if running {
		api.progress.Done, api.progress.Total = 0, 0
	}
	api.broadcastLocked()
}

func (api *LibraryAPI) currentProgress() UpdateProgress {
	api.progressMu.Lock()
	defer api.progressMu.Unlock()
	return api.progress
}

func (api *LibraryAPI) broadcastLocked() {
	// caller must hold progressMu
	api.subsMu.Lock()
	defer api.subsMu.Unlock()

	for ch := range api.subs {
		select {
		case ch <- struct{}{}:
		default:
			// drop update for slow subscriber
		}
	}
}

// HandleProgress streams rebuild progress via SSE.
// GET /api/update/progress
func (api *LibraryAPI) HandleProgress(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan struct{}, 1)

	api.subsMu.Lock()
	api.subs[ch] = struct{}{}
	api.subsMu.Unlock()

	defer func() {
		api.subsMu.Lock()
		delete(api.subs, ch)
		api.subsMu.Unlock()
	}()

	send := func() {
		data, _ := json.Marshal(api.currentProgress())
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	// Initial event
	send()

	ctx := r.Context()
	for {
		select {
		case <-ch:
			send()
		case <-ctx.Done():
			return
		}
	}
}
