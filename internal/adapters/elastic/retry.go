package elastic

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBackoff  = 500 * time.Millisecond
	maxBackoffShift = 6
)

// retryStatuses are the engine responses the transport retries: throttling
// and gateway failures. Everything else is returned to the caller as is.
var retryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

func retryable(status int) bool {
	for _, s := range retryStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// retryBackoff doubles base on every attempt, starting at base for the first
// retry. The delay stops growing after maxBackoffShift doublings.
func retryBackoff(base time.Duration) func(attempt int) time.Duration {
	if base <= 0 {
		base = defaultBackoff
	}
	return func(attempt int) time.Duration {
		shift := attempt - 1
		if shift < 0 {
			shift = 0
		}
		if shift > maxBackoffShift {
			shift = maxBackoffShift
		}
		return base * time.Duration(1<<shift)
	}
}

// roundTripLogger reports every transport round trip to zap. Retried
// attempts surface as one warning each.
type roundTripLogger struct {
	logger *zap.Logger
}

func (l roundTripLogger) LogRoundTrip(req *http.Request, res *http.Response, err error, start time.Time, dur time.Duration) error {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("opaque_id", req.Header.Get("X-Opaque-Id")),
		zap.Duration("duration", dur),
	}
	switch {
	case err != nil:
		l.logger.Warn("engine round trip failed", append(fields, zap.Error(err))...)
	case res != nil && retryable(res.StatusCode):
		l.logger.Warn("engine round trip rejected", append(fields, zap.Int("status", res.StatusCode))...)
	case res != nil:
		l.logger.Debug("engine round trip", append(fields, zap.Int("status", res.StatusCode))...)
	}
	return nil
}

func (roundTripLogger) RequestBodyEnabled() bool  { return false }
func (roundTripLogger) ResponseBodyEnabled() bool { return false }
