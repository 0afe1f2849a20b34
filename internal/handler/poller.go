package handler

import (
	"net/http"
	"time"

	"webcorp/telemetry-bridge/internal/cursor"
	"webcorp/telemetry-bridge/internal/poller"
	"webcorp/telemetry-bridge/internal/registry"

	"go.uber.org/zap"
)

// PollerHandler serves the polling pipeline's admin endpoints.
type PollerHandler struct {
	registry *registry.Registry
	cursors  *cursor.Store
	poller   *poller.Poller
	logger   *zap.Logger
}

// NewPollerHandler creates a new poller admin handler
func NewPollerHandler(reg *registry.Registry, cursors *cursor.Store, p *poller.Poller, logger *zap.Logger) *PollerHandler {
	return &PollerHandler{
		registry: reg,
		cursors:  cursors,
		poller:   p,
		logger:   logger,
	}
}

// HandleHealth reports pipeline status
func (h *PollerHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lastUpdate := ""
	if t := h.poller.LastUpdate(); !t.IsZero() {
		lastUpdate = t.Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "OK",
		"devices":          h.registry.Count(),
		"lastUpdate":       lastUpdate,
		"positionsTracked": h.cursors.Count(),
	})
}

// HandleDevices dumps the cached device registry
func (h *PollerHandler) HandleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.registry.Snapshot())
}
