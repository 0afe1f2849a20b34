package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"webcorp/telemetry-bridge/internal/models"

	"go.uber.org/zap"
)

// knotsToKmh converts the source platform's speed unit to km/h.
const knotsToKmh = 1.852

// DeviceLookup resolves device metadata for enrichment.
type DeviceLookup interface {
	Lookup(deviceID int64) models.Device
}

// Forwarder enriches surviving position records and posts them to the
// translation stage. A failed forward is logged and dropped; the
// position stays consumed because the cursor advanced before the
// forward attempt.
type Forwarder struct {
	devices    DeviceLookup
	targetURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewForwarder creates a new forwarder posting to targetURL
func NewForwarder(devices DeviceLookup, targetURL string, timeout time.Duration, logger *zap.Logger) *Forwarder {
	return &Forwarder{
		devices:   devices,
		targetURL: targetURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Forward enriches one record and posts it to the translation ingress
func (f *Forwarder) Forward(ctx context.Context, pos models.PositionRecord) error {
	evt := f.Enrich(pos)

	jsonData, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal enriched event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.targetURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("forward request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("translation stage returned status %d: %s", resp.StatusCode, string(body))
	}

	f.logger.Info("Position forwarded",
		zap.String("event", evt.EventName),
		zap.String("device", evt.DeviceInfo.Name),
		zap.Int64("position_id", pos.ID),
	)
	return nil
}

// Enrich combines a raw record with device metadata, unit conversion
// and normalized telemetry attributes into the wire document.
func (f *Forwarder) Enrich(pos models.PositionRecord) *models.EnrichedEvent {
	device := f.devices.Lookup(pos.DeviceID)
	attrs := pos.Attributes
	if attrs == nil {
		attrs = models.Attributes{}
	}

	speedKnots := pos.Speed
	if speedKnots == 0 {
		speedKnots = attrs.FloatOr(0, "speed", "velocity")
	}
	speedKmh := speedKnots * knotsToKmh

	positionAttrs := models.Attributes{
		"hdop": f.numericOr(attrs, pos.HDOP, "hdop", "HDOP"),
		"rssi": f.numericOr(attrs, pos.RSSI, "rssi", "signalStrength"),
	}
	f.setIfNumeric(positionAttrs, attrs, "cellId", "cellId", "cid")
	f.setIfNumeric(positionAttrs, attrs, "lac", "lac", "areaCode")
	f.setIfNumeric(positionAttrs, attrs, "mcc", "mcc", "mobileCountryCode")
	f.setIfNumeric(positionAttrs, attrs, "mnc", "mnc", "mobileNetworkCode")

	if v, ok := attrs.Raw("digitalInput1"); ok {
		positionAttrs["din1"] = v
	}
	if v, ok := attrs.Raw("digitalInput2"); ok {
		positionAttrs["din2"] = v
	}
	for _, key := range passthroughKeys {
		if v, ok := attrs.Raw(key); ok {
			positionAttrs[key] = v
		}
	}

	eventCode, _ := attrs.Raw("eventCode", "event")

	recType := pos.Type
	if recType == "" {
		recType = "position"
	}

	return &models.EnrichedEvent{
		ID:         pos.ID,
		Type:       recType,
		DeviceID:   pos.DeviceID,
		PositionID: pos.ID,
		ServerTime: pos.ServerTime,
		DeviceTime: pos.DeviceTime,
		Attributes: attrs,
		EventCode:  eventCode,
		EventName:  eventName(pos, attrs),
		Position: models.Position{
			Latitude:   pos.Latitude,
			Longitude:  pos.Longitude,
			Altitude:   pos.Altitude,
			Speed:      speedKmh,
			Course:     pos.Course,
			Attributes: positionAttrs,
		},
		DeviceInfo: models.DeviceInfo{
			IMEI:     device.UniqueID,
			Name:     device.Name,
			Model:    device.Model,
			Category: device.Category,
		},
	}
}

// passthroughKeys are copied into the enriched attribute block
// verbatim when present: digital I/O states, battery/odometer
// telemetry and the raw IO channels the translation rules inspect.
var passthroughKeys = []string{
	"ignition", "batteryLevel",
	"priority", "sat", "motion", "pdop", "power", "battery",
	"tripOdometer", "odometer", "distance", "totalDistance", "hours",
	"io6", "io9", "io11", "io14", "io24", "io66", "io68", "io69",
	"io78", "io113", "io173", "io179", "io180", "io181", "io182",
	"io200", "io205", "io206", "io215", "io216",
	"io239", "io240", "io243", "io247", "io250", "io251", "io252",
	"io253", "io255", "io19", "io73",
	"alarm", "eventValue", "value", "operator", "driverUniqueId",
}

// eventName resolves the human-readable name: explicit event text
// first, then the static code table, then the record type, then
// "Unknown".
func eventName(pos models.PositionRecord, attrs models.Attributes) string {
	if v, ok := attrs.FirstTruthy("event"); ok {
		return models.Stringify(v)
	}
	if code, ok := attrs.Float("eventCode"); ok {
		if name, found := eventNames[int(code)]; found {
			return name
		}
	}
	if pos.Type != "" {
		return pos.Type
	}
	return "Unknown"
}

func (f *Forwarder) numericOr(attrs models.Attributes, fallback float64, keys ...string) float64 {
	if v, ok := attrs.Float(keys...); ok {
		return v
	}
	return fallback
}

func (f *Forwarder) setIfNumeric(dst, attrs models.Attributes, name string, keys ...string) {
	if v, ok := attrs.Float(keys...); ok {
		dst[name] = v
	}
}
