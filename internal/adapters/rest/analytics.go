package rest

import (
	"net/http"

	"github.com/ewilliams-labs/tracklens/internal/core/query"
)

// CompareGenres handles GET /analytics/compare?genres=a&genres=b
func (h *Handler) CompareGenres(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.CompareGenres(r.Context(), listParam(r, "genres"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// TopArtists handles GET /analytics/top-artists/{genre}
func (h *Handler) TopArtists(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r, "size", defaultRankingSize)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	minTracks, err := intParam(r, "min_tracks", query.DefaultMinTracks)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	weighted, err := boolParam(r, "weighted", false)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.TopArtists(r.Context(), r.PathValue("genre"), size, minTracks, weighted)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
