package forwarder

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webcorp/telemetry-bridge/internal/models"

	"go.uber.org/zap"
)

type fakeLookup struct {
	devices map[int64]models.Device
}

func (f *fakeLookup) Lookup(deviceID int64) models.Device {
	return f.devices[deviceID]
}

func newTestForwarder(targetURL string) *Forwarder {
	lookup := &fakeLookup{devices: map[int64]models.Device{
		12: {ID: 12, Name: "T123ABC", UniqueID: "350000000000001", Model: "FMB920", Category: "car"},
	}}
	return NewForwarder(lookup, targetURL, 5*time.Second, zap.NewNop())
}

func TestEnrich_SpeedConversion(t *testing.T) {
	f := newTestForwarder("")

	tests := []struct {
		name string
		pos  models.PositionRecord
		want float64
	}{
		{"record speed", models.PositionRecord{DeviceID: 12, Speed: 10}, 18.52},
		{"attribute fallback", models.PositionRecord{DeviceID: 12, Attributes: models.Attributes{"speed": float64(10)}}, 18.52},
		{"velocity alias", models.PositionRecord{DeviceID: 12, Attributes: models.Attributes{"velocity": float64(2)}}, 3.704},
		{"no speed", models.PositionRecord{DeviceID: 12}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := f.Enrich(tt.pos)
			if math.Abs(evt.Position.Speed-tt.want) > 1e-9 {
				t.Errorf("speed = %v km/h, want %v", evt.Position.Speed, tt.want)
			}
		})
	}
}

func TestEnrich_DeviceInfo(t *testing.T) {
	f := newTestForwarder("")

	evt := f.Enrich(models.PositionRecord{ID: 101, DeviceID: 12})
	if evt.DeviceInfo.IMEI != "350000000000001" || evt.DeviceInfo.Name != "T123ABC" {
		t.Errorf("device info = %+v", evt.DeviceInfo)
	}
	if evt.PositionID != 101 || evt.ID != 101 {
		t.Errorf("position id = %d/%d, want 101", evt.ID, evt.PositionID)
	}

	// Unknown device yields an empty placeholder, never an error
	evt = f.Enrich(models.PositionRecord{ID: 102, DeviceID: 99})
	if evt.DeviceInfo.IMEI != "" || evt.DeviceInfo.Name != "" {
		t.Errorf("unknown device info = %+v, want empty", evt.DeviceInfo)
	}
}

func TestEnrich_AttributeAliases(t *testing.T) {
	f := newTestForwarder("")

	pos := models.PositionRecord{
		DeviceID: 12,
		HDOP:     2.5,
		Attributes: models.Attributes{
			"satelliteCount": float64(11),
			"satellites":     float64(4),
			"signalStrength": float64(17),
			"cid":            float64(5678),
		},
	}
	evt := f.Enrich(pos)
	pa := evt.Position.Attributes

	if pa["rssi"] != float64(17) {
		t.Errorf("rssi = %v, want alias signalStrength 17", pa["rssi"])
	}
	if pa["hdop"] != 2.5 {
		t.Errorf("hdop = %v, want record-level fallback 2.5", pa["hdop"])
	}
	if pa["cellId"] != float64(5678) {
		t.Errorf("cellId = %v, want cid alias 5678", pa["cellId"])
	}
	if _, ok := pa["lac"]; ok {
		t.Error("lac should be absent when no alias matches")
	}
}

func TestEventName(t *testing.T) {
	tests := []struct {
		name  string
		pos   models.PositionRecord
		attrs models.Attributes
		want  string
	}{
		{"explicit event text", models.PositionRecord{}, models.Attributes{"event": "Custom Alert"}, "Custom Alert"},
		{"code table", models.PositionRecord{}, models.Attributes{"eventCode": float64(15)}, "Tamper Alarm"},
		{"event text wins over code", models.PositionRecord{}, models.Attributes{"event": "X", "eventCode": float64(15)}, "X"},
		{"type fallback", models.PositionRecord{Type: "alarm"}, models.Attributes{"eventCode": float64(500)}, "alarm"},
		{"unknown", models.PositionRecord{}, models.Attributes{}, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eventName(tt.pos, tt.attrs); got != tt.want {
				t.Errorf("eventName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForward_PostsEnrichedEvent(t *testing.T) {
	var received models.EnrichedEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode error: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := newTestForwarder(server.URL)
	pos := models.PositionRecord{
		ID:       101,
		DeviceID: 12,
		Speed:    10,
		Attributes: models.Attributes{
			"eventCode": float64(239),
			"ignition":  true,
		},
	}

	if err := f.Forward(context.Background(), pos); err != nil {
		t.Fatalf("Forward() error: %v", err)
	}
	if received.EventName != "Ignition On/Off" {
		t.Errorf("EventName = %q, want Ignition On/Off", received.EventName)
	}
	if received.DeviceInfo.IMEI != "350000000000001" {
		t.Errorf("IMEI = %q", received.DeviceInfo.IMEI)
	}
}

func TestForward_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	f := newTestForwarder(server.URL)
	if err := f.Forward(context.Background(), models.PositionRecord{DeviceID: 12}); err == nil {
		t.Error("expected error for non-2xx response")
	}
}
