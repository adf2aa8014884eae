package handlers

import (
	"context"
	"net/http"

	"github.com/laranacanta/backend/internal/models"
	"github.com/laranacanta/backend/internal/services"
)

// searcher is the external catalog dependency, satisfied by
// *services.YouTubeService.
type searcher interface {
	Search(ctx context.Context, query string) ([]services.YouTubeVideo, error)
}

// SearchHandler proxies song searches to the external catalog.
type SearchHandler struct {
	youtube searcher
}

// NewSearchHandler creates a SearchHandler backed by the given searcher.
func NewSearchHandler(youtube searcher) *SearchHandler {
	return &SearchHandler{youtube: youtube}
}

// Search handles song search queries. An empty query is rejected before any
// upstream call; upstream failures surface as a 500 with a stable message.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	videos, err := h.youtube.Search(r.Context(), query)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "song search unavailable", err)
		return
	}

	results := make([]models.SearchResultResponse, len(videos))
	for i, video := range videos {
		results[i] = models.SearchResultResponse{
			ExternalVideoID: video.ID,
			Title:           video.Title,
			ThumbnailURL:    video.ThumbnailURL,
		}
	}

	writeJSON(w, http.StatusOK, results)
}
