package http

import (
	"net/http"

	apierrors "telcoclean/internal/errors"
)

// MetricsHandler serves the Prometheus exposition of the cleaning metrics.
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler wraps the Prometheus handler. A nil handler means the
// metric exporter is disabled and /metrics answers 503.
func NewMetricsHandler(exposition http.Handler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		apierrors.WriteError(w, apierrors.New(http.StatusServiceUnavailable, "METRICS_DISABLED", "Metric exporter is disabled"))
		return
	}
	h.exposition.ServeHTTP(w, r)
}
