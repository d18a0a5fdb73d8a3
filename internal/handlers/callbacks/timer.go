package callbacks

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/pkg/observability"
)

// statusRecorder captures the response status code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Timed wraps a callback handler with the request observer: one info log
// entry per request with the elapsed wall-clock time, and a warning plus a
// metric when handling exceeds the latency budget. It never changes the
// response.
func Timed(endpoint string, budget time.Duration, logger *zap.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		elapsed := time.Since(start)
		observability.ObserveCallback(endpoint, rec.status, elapsed)

		logger.Info("Request handled",
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)

		if elapsed >= budget {
			logger.Warn("Request took longer than 6 seconds!",
				zap.String("endpoint", endpoint),
				zap.String("request_id", requestID),
				zap.Duration("duration", elapsed),
			)
			observability.IncSlowCallback(endpoint)
		}
	}
}
