package registry

import (
	"context"
	"sync"

	"webcorp/telemetry-bridge/internal/client"
	"webcorp/telemetry-bridge/internal/models"

	"go.uber.org/zap"
)

// Registry caches device metadata from the source platform. The cache
// is replaced wholesale on every successful refresh; a failed refresh
// keeps the previous snapshot so lookups stay available.
type Registry struct {
	client  *client.SourceClient
	logger  *zap.Logger
	mu      sync.RWMutex
	devices map[int64]models.Device
}

// NewRegistry creates a new device registry
func NewRegistry(client *client.SourceClient, logger *zap.Logger) *Registry {
	return &Registry{
		client:  client,
		logger:  logger,
		devices: make(map[int64]models.Device),
	}
}

// Refresh fetches the full device list and atomically replaces the
// cached mapping. On failure the previous cache is retained.
func (r *Registry) Refresh(ctx context.Context) error {
	devices, err := r.client.FetchDevices(ctx)
	if err != nil {
		r.logger.Error("Failed to refresh device registry, keeping previous cache",
			zap.Error(err),
		)
		return err
	}

	next := make(map[int64]models.Device, len(devices))
	for _, d := range devices {
		next[d.ID] = d
	}

	r.mu.Lock()
	r.devices = next
	r.mu.Unlock()

	r.logger.Info("Device registry refreshed",
		zap.Int("count", len(next)),
	)
	return nil
}

// Lookup returns the cached device for the given identifier, or the
// zero Device when unknown. It never fails.
func (r *Registry) Lookup(deviceID int64) models.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.devices[deviceID]
}

// Count returns the number of cached devices
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Snapshot returns a copy of the cached mapping for the admin dump
func (r *Registry) Snapshot() map[int64]models.Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[int64]models.Device, len(r.devices))
	for id, d := range r.devices {
		snapshot[id] = d
	}
	return snapshot
}
