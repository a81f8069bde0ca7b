package handlers

import (
	"context"
	"net/http"

	"media-resolver/internal/logging"
)

// Reindex triggers a full index run in the background. A run already in
// progress is reported as a conflict rather than queued.
func (h *Handlers) Reindex(w http.ResponseWriter, _ *http.Request) {
	if h.indexer.IsIndexing() {
		writeJSONError(w, "index already in progress", http.StatusConflict)
		return
	}

	go func() {
		if err := h.indexer.Run(context.Background()); err != nil {
			logging.Error("requested reindex failed: %v", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "reindex started"})
}
