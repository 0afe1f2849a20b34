package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"webcorp/telemetry-bridge/internal/client"
	"webcorp/telemetry-bridge/internal/models"

	"go.uber.org/zap"
)

// sourceStub serves a device list with basic auth, switchable to
// failure mode mid-test.
type sourceStub struct {
	mu      sync.Mutex
	devices []models.Device
	fail    bool
}

func (s *sourceStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		s.mu.Lock()
		fail := s.fail
		devices := s.devices
		s.mu.Unlock()
		if fail {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(devices)
	}
}

func newTestRegistry(t *testing.T, stub *sourceStub) (*Registry, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)
	c := client.NewSourceClient(server.URL, "admin", "secret", 5*time.Second, zap.NewNop())
	return NewRegistry(c, zap.NewNop()), server
}

func TestRefresh_ReplacesCache(t *testing.T) {
	stub := &sourceStub{devices: []models.Device{
		{ID: 1, Name: "T111AAA", UniqueID: "350000000000001"},
		{ID: 2, Name: "T222BBB", UniqueID: "350000000000002"},
	}}
	reg, _ := newTestRegistry(t, stub)

	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if reg.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", reg.Count())
	}
	if got := reg.Lookup(1); got.UniqueID != "350000000000001" {
		t.Errorf("Lookup(1) = %+v", got)
	}

	// Next snapshot drops device 1: the replacement is wholesale
	stub.mu.Lock()
	stub.devices = []models.Device{{ID: 2, Name: "T222BBB", UniqueID: "350000000000002"}}
	stub.mu.Unlock()

	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if reg.Count() != 1 {
		t.Errorf("Count() = %d after wholesale replacement, want 1", reg.Count())
	}
	if got := reg.Lookup(1); got.UniqueID != "" {
		t.Errorf("Lookup(1) = %+v, want zero device after removal", got)
	}
}

func TestRefresh_FailureKeepsPreviousCache(t *testing.T) {
	stub := &sourceStub{devices: []models.Device{
		{ID: 1, Name: "T111AAA", UniqueID: "350000000000001"},
	}}
	reg, _ := newTestRegistry(t, stub)

	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	stub.mu.Lock()
	stub.fail = true
	stub.mu.Unlock()

	if err := reg.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() succeeded against a failing source")
	}
	if reg.Count() != 1 {
		t.Errorf("Count() = %d after failed refresh, want previous 1", reg.Count())
	}
	if got := reg.Lookup(1); got.Name != "T111AAA" {
		t.Errorf("Lookup(1) = %+v, want retained device", got)
	}
}

func TestRefresh_AuthError(t *testing.T) {
	stub := &sourceStub{}
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	c := client.NewSourceClient(server.URL, "admin", "wrong", 5*time.Second, zap.NewNop())
	reg := NewRegistry(c, zap.NewNop())

	err := reg.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected auth error")
	}
	var authErr *client.AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("error type = %T, want *client.AuthError", err)
	}
}

func TestLookup_UnknownDevice(t *testing.T) {
	reg := NewRegistry(nil, zap.NewNop())
	if got := reg.Lookup(42); got != (models.Device{}) {
		t.Errorf("Lookup(42) = %+v, want zero device", got)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	stub := &sourceStub{devices: []models.Device{
		{ID: 1, Name: "T111AAA", UniqueID: "350000000000001"},
	}}
	reg, _ := newTestRegistry(t, stub)
	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	snap := reg.Snapshot()
	delete(snap, 1)
	if reg.Count() != 1 {
		t.Error("mutating the snapshot changed the registry")
	}
}
