package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webcorp/telemetry-bridge/internal/models"

	"go.uber.org/zap"
)

func samplePayload() *models.OutgoingPayload {
	return &models.OutgoingPayload{
		VehicleRegNo: "T123ABC",
		Type:         "poi",
		IMEI:         "350000000000001",
		Items: []models.PayloadItem{
			{MessageID: "1", ActivityID: "2", MCC: "640", D2D3: "3", RSSI: 20},
		},
	}
}

func TestDeliver_Success(t *testing.T) {
	var gotAuth string
	var gotPayload models.OutgoingPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"accepted":true}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "dG9rZW4=", 5*time.Second, zap.NewNop())
	result, err := c.Deliver(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if gotAuth != "Basic dG9rZW4=" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPayload.IMEI != "350000000000001" || len(gotPayload.Items) != 1 {
		t.Errorf("delivered payload = %+v", gotPayload)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("status = %d", result.StatusCode)
	}
	if string(result.Body) != `{"accepted":true}` {
		t.Errorf("body = %s", result.Body)
	}
}

func TestDeliver_Rejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad payload", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", 5*time.Second, zap.NewNop())
	_, err := c.Deliver(context.Background(), samplePayload())
	if err == nil {
		t.Fatal("expected error for rejected payload")
	}
	var dErr *DeliveryError
	if !errors.As(err, &dErr) {
		t.Fatalf("error type = %T, want *DeliveryError", err)
	}
	if dErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d", dErr.StatusCode)
	}
}

func TestDeliver_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", 500*time.Millisecond, zap.NewNop())
	if _, err := c.Deliver(context.Background(), samplePayload()); err == nil {
		t.Fatal("expected error for unreachable downstream")
	}
}
