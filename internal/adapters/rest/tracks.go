package rest

import (
	"net/http"
	"strings"

	"github.com/ewilliams-labs/tracklens/internal/core/query"
)

// ArtistAlbums handles GET /albums/{artist}
func (h *Handler) ArtistAlbums(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r, "size", defaultAlbumsSize)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.SearchArtistAlbums(r.Context(), r.PathValue("artist"), size)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ArtistTracks handles GET /tracks/{artist}
func (h *Handler) ArtistTracks(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r, "size", defaultTracksSize)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.SearchTracksByArtist(r.Context(), r.PathValue("artist"), size)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SearchSong handles GET /search/song/{song}
func (h *Handler) SearchSong(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SmartSongSearch(r.Context(), r.PathValue("song"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SearchFuzzy handles GET /search/fuzzy/{song}
func (h *Handler) SearchFuzzy(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r, "size", defaultTextSize)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	fuzziness := strings.TrimSpace(r.URL.Query().Get("fuzziness"))
	if fuzziness == "" {
		fuzziness = query.FuzzinessAuto
	}

	res, err := h.svc.SearchSongFuzzy(r.Context(), r.PathValue("song"), fuzziness, size)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SearchPhrase handles GET /search/phrase/{song}
func (h *Handler) SearchPhrase(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r, "size", defaultTextSize)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.SearchSongPhrase(r.Context(), r.PathValue("song"), size)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Filter handles GET /filter?genre=&album=&size=
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r, "size", defaultFilterSize)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	attrs := query.Attributes{
		Genre: strings.TrimSpace(r.URL.Query().Get("genre")),
		Album: strings.TrimSpace(r.URL.Query().Get("album")),
	}

	res, err := h.svc.Filter(r.Context(), attrs, size)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Similar handles GET /similar/{track_id}
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	size, err := intParam(r, "size", defaultSimilarSize)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.FindSimilar(r.Context(), r.PathValue("track_id"), size)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
