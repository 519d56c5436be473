package rest

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/tracklens/internal/core/services"
	"github.com/ewilliams-labs/tracklens/internal/metrics"
)

// Config carries the HTTP settings the handler needs beyond the service.
type Config struct {
	IndexName      string
	AllowedOrigins []string
	Version        string
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc     *services.Catalog // Dependency on the Core Service
	router  *http.ServeMux    // Standard library router
	logger  *zap.Logger
	metrics *metrics.Recorder
	cfg     Config
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc *services.Catalog, logger *zap.Logger, rec *metrics.Recorder, cfg Config) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		svc:     svc,
		router:  http.NewServeMux(),
		logger:  logger.Named("http"),
		metrics: rec,
		cfg:     cfg,
	}

	// Register Routes
	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface. Every request passes
// through CORS and access logging before reaching the router.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get("X-Request-Id")
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set("X-Request-Id", reqID)

	if h.cors(w, r) {
		return
	}

	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	h.router.ServeHTTP(sw, r)

	h.logger.Info("request",
		zap.String("request_id", reqID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", sw.status),
		zap.Duration("duration", time.Since(start)))
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	// Service info
	h.router.HandleFunc("GET /{$}", h.Index)
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.Handle("GET /metrics", h.metrics.Handler())

	// Catalog
	h.router.HandleFunc("GET /albums/{artist}", h.ArtistAlbums)
	h.router.HandleFunc("GET /tracks/{artist}", h.ArtistTracks)
	h.router.HandleFunc("GET /search/song/{song}", h.SearchSong)
	h.router.HandleFunc("GET /search/fuzzy/{song}", h.SearchFuzzy)
	h.router.HandleFunc("GET /search/phrase/{song}", h.SearchPhrase)
	h.router.HandleFunc("GET /filter", h.Filter)
	h.router.HandleFunc("GET /similar/{track_id}", h.Similar)

	// Analytics
	h.router.HandleFunc("GET /analytics/compare", h.CompareGenres)
	h.router.HandleFunc("GET /analytics/top-artists/{genre}", h.TopArtists)
}

// cors applies the allowed-origin policy and answers preflight requests.
// It reports whether the request was fully handled.
func (h *Handler) cors(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || !h.originAllowed(origin) {
		return false
	}

	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Add("Vary", "Origin")

	if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
		}
		w.Header().Set("Access-Control-Max-Age", "600")
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

func (h *Handler) originAllowed(origin string) bool {
	return slices.ContainsFunc(h.cfg.AllowedOrigins, func(allowed string) bool {
		return allowed == "*" || strings.EqualFold(allowed, origin)
	})
}

// statusWriter captures the response status for the access log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
