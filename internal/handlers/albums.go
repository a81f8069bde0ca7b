package handlers

import (
	"net/http"

	"media-resolver/internal/database"
	"media-resolver/internal/logging"
)

// AlbumsResponse is the albums endpoint's payload.
type AlbumsResponse struct {
	Albums []database.Album `json:"albums"`
	Count  int              `json:"count"`
}

// GetAlbums lists all indexed albums.
func (h *Handlers) GetAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.db.Albums(r.Context())
	if err != nil {
		logging.Error("failed to list albums: %v", err)
		writeJSONError(w, "failed to list albums", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, AlbumsResponse{Albums: albums, Count: len(albums)})
}

// GetStats returns the cached index statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	stats := h.db.GetStats()
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, stats)
}
