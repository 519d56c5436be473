package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
)

// Error codes returned in the "error" field of error bodies.
const (
	errCodeInvalidInput = "invalid_input"
	errCodeNotFound     = "not_found"
	errCodeUpstream     = "upstream_unavailable"
	errCodeInternal     = "internal_error"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorWithCode(w http.ResponseWriter, status int, detail, code string) {
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errCodeInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errCodeNotFound
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, errCodeUpstream
	default:
		return http.StatusInternalServerError, errCodeInternal
	}
}

// writeServiceError reports err to the client. Validation errors carry their
// own message; other failures are logged with the full chain.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)

	detail := err.Error()
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		detail = verr.Error()
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	writeErrorWithCode(w, status, detail, code)
}
