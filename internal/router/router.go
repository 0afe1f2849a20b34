package router

import (
	"net/http"

	"webcorp/telemetry-bridge/internal/handler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewTranslator builds the translation stage's HTTP surface
func NewTranslator(h *handler.TranslatorHandler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/events", h.HandleEvent)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/counters", h.HandleCounters)
	mux.HandleFunc("/counters/", h.HandleCounters)
	mux.HandleFunc("/deliveries", h.HandleDeliveries)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		h.HandleStatus(w, r)
	})

	return withRequestLogging(mux, logger)
}

// NewPoller builds the polling pipeline's admin HTTP surface
func NewPoller(h *handler.PollerHandler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/devices", h.HandleDevices)
	mux.Handle("/metrics", promhttp.Handler())

	return withRequestLogging(mux, logger)
}

// withRequestLogging wraps the mux with request logging
func withRequestLogging(mux *http.ServeMux, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)
		mux.ServeHTTP(w, r)
	})
}
