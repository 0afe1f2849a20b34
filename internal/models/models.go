package models

import "time"

// Device is a snapshot of device metadata from the source provider.
// It is replaced wholesale on every registry refresh, never patched.
type Device struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	UniqueID string `json:"uniqueId"`
	Model    string `json:"model,omitempty"`
	Category string `json:"category,omitempty"`
}

// PositionRecord is a raw position as returned by the source provider.
// The identifier is assigned by the provider and increases per device.
type PositionRecord struct {
	ID         int64      `json:"id"`
	DeviceID   int64      `json:"deviceId"`
	Type       string     `json:"type,omitempty"`
	ServerTime time.Time  `json:"serverTime"`
	DeviceTime time.Time  `json:"deviceTime"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Altitude   float64    `json:"altitude"`
	Speed      float64    `json:"speed"` // knots
	Course     float64    `json:"course"`
	Satellites float64    `json:"satellites,omitempty"`
	HDOP       float64    `json:"hdop,omitempty"`
	RSSI       float64    `json:"rssi,omitempty"`
	Attributes Attributes `json:"attributes"`
}

// DeviceInfo is the device block embedded in the enriched event.
type DeviceInfo struct {
	IMEI     string `json:"imei"`
	Name     string `json:"name"`
	Model    string `json:"model,omitempty"`
	Category string `json:"category,omitempty"`
}

// Position carries the unit-converted coordinates of an enriched event.
// Speed is in km/h here, unlike the raw record.
type Position struct {
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Altitude   float64    `json:"altitude"`
	Speed      float64    `json:"speed"`
	Course     float64    `json:"course"`
	Attributes Attributes `json:"attributes,omitempty"`
}

// EnrichedEvent is the wire document posted from the polling pipeline
// to the translation stage.
type EnrichedEvent struct {
	ID            int64       `json:"id"`
	Type          string      `json:"type"`
	DeviceID      int64       `json:"deviceId"`
	PositionID    int64       `json:"positionId"`
	ServerTime    time.Time   `json:"serverTime"`
	DeviceTime    time.Time   `json:"deviceTime"`
	Attributes    Attributes  `json:"attributes"`
	EventCode     interface{} `json:"eventCode"`
	EventName     string      `json:"eventName"`
	Position      Position    `json:"position"`
	DeviceInfo    DeviceInfo  `json:"deviceInfo"`
	RawAttributes Attributes  `json:"raw_attributes,omitempty"`
}

// OutgoingPayload is the document delivered to the downstream provider.
type OutgoingPayload struct {
	VehicleRegNo string        `json:"vehicle_reg_no"`
	Type         string        `json:"type"`
	IMEI         string        `json:"imei"`
	Items        []PayloadItem `json:"items"`
}

// PayloadItem is one activity entry in the outgoing payload.
type PayloadItem struct {
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	Altitude        float64    `json:"altitude"`
	Timestamp       int64      `json:"timestamp"` // epoch millis
	HorizontalSpeed float64    `json:"horizontal_speed"`
	VerticalSpeed   float64    `json:"vertical_speed"`
	Bearing         float64    `json:"bearing"`
	SatelliteCount  int        `json:"satellite_count"`
	HDOP            float64    `json:"HDOP"`
	D2D3            string     `json:"d2d3"`
	RSSI            int        `json:"RSSI"`
	LAC             string     `json:"LAC,omitempty"`
	CellID          string     `json:"Cell_ID,omitempty"`
	MCC             string     `json:"MCC"`
	MessageID       string     `json:"MGS_ID"`
	ActivityID      string     `json:"activity_id"`
	AddonInfo       *AddonInfo `json:"addon_info,omitempty"`
	FuelInfo        *FuelInfo  `json:"fuel_info,omitempty"`
}

// AddonInfo is the activity-specific supplement attached to a payload
// item. Only the fields relevant to the item's activity are set.
type AddonInfo struct {
	IdleTime               string   `json:"idleTime,omitempty"`
	DistanceTravelled      string   `json:"distance_travelled,omitempty"`
	TripDuration           string   `json:"trip_duration,omitempty"`
	AvgSpeed               string   `json:"avgSpeed,omitempty"`
	MaxSpeed               string   `json:"maxSpeed,omitempty"`
	Speed                  *float64 `json:"speed,omitempty"`
	ExtPowerVoltage        string   `json:"ext_power_voltage,omitempty"`
	IntBatteryVoltage      string   `json:"int_battery_voltage,omitempty"`
	TamperingType          string   `json:"tampering_type,omitempty"`
	SpeedAtEvent           *float64 `json:"speed_at_event,omitempty"`
	DriverIdentificationNo string   `json:"v_driver_identification_no,omitempty"`
	GeoName                string   `json:"geo_name,omitempty"`
	GeoID                  string   `json:"geo_id,omitempty"`
}

// FuelInfo is attached only to fuel-report items.
type FuelInfo struct {
	ValidFlag   string `json:"validFlag"`
	SignalLevel string `json:"signalLevel"`
	SoftStatus  string `json:"softStatus"`
	HardFault   string `json:"hardFault"`
	FuelLevel   string `json:"fuelLevel"`
	RTFuelLevel string `json:"rtFuelLevel"`
	TankTemp    int    `json:"tankTemp"`
	Channel     string `json:"channel"`
}

// TranslateResponse is what the translation ingress returns to its
// caller, for success, dry-run and failure alike. The counters
// snapshot is always included for observability.
type TranslateResponse struct {
	Status         string           `json:"status"`
	Message        string           `json:"message"`
	Error          string           `json:"error,omitempty"`
	Received       *EnrichedEvent   `json:"received_event,omitempty"`
	Outgoing       *OutgoingPayload `json:"outgoing_payload,omitempty"`
	Downstream     interface{}      `json:"downstream_response,omitempty"`
	DeviceCounters map[string]int   `json:"device_counters"`
}
