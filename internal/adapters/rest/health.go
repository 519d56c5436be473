package rest

import (
	"net/http"
)

type engineInfo struct {
	ClusterName string `json:"cluster_name"`
	Version     string `json:"version"`
}

type healthyResponse struct {
	Status        string     `json:"status"`
	Elasticsearch engineInfo `json:"elasticsearch"`
	Index         string     `json:"index"`
}

type degradedResponse struct {
	Status        string `json:"status"`
	API           string `json:"api"`
	Elasticsearch string `json:"elasticsearch"`
	Error         string `json:"error"`
	Message       string `json:"message"`
}

// HealthCheck reports whether the engine is reachable. It answers 200 either
// way; a degraded body means the API is up but searches will fail.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Health(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, degradedResponse{
			Status:        "degraded",
			API:           "healthy",
			Elasticsearch: "unavailable",
			Error:         err.Error(),
			Message:       "API is running but Elasticsearch is not accessible",
		})
		return
	}

	writeJSON(w, http.StatusOK, healthyResponse{
		Status: "healthy",
		Elasticsearch: engineInfo{
			ClusterName: info.ClusterName,
			Version:     info.Version.Number,
		},
		Index: h.cfg.IndexName,
	})
}

type indexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Index handles GET / with a map of the available endpoints.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Message: "tracklens music search API",
		Version: h.cfg.Version,
		Endpoints: map[string]string{
			"albums":      "/albums/{artist}",
			"tracks":      "/tracks/{artist}",
			"search":      "/search/song/{song}",
			"fuzzy":       "/search/fuzzy/{song}?fuzziness=AUTO",
			"phrase":      "/search/phrase/{song}",
			"filter":      "/filter?genre=rock&album=album_name",
			"similar":     "/similar/{track_id}",
			"compare":     "/analytics/compare?genres=rock&genres=pop",
			"top_artists": "/analytics/top-artists/{genre}?min_tracks=2",
			"health":      "/health",
			"metrics":     "/metrics",
		},
	})
}
