package payload

import (
	"math"
	"strconv"
	"strings"

	"webcorp/telemetry-bridge/internal/classifier"
	"webcorp/telemetry-bridge/internal/models"
)

// payloadType tags every outgoing document as a point-of-interest
// submission, the only type the downstream provider accepts here.
const payloadType = "poi"

// defaultMCC is used when no operator attribute is present.
const defaultMCC = "640"

// fixedRSSI is a placeholder; the downstream field is mandatory but
// the reported value is not used.
const fixedRSSI = 20

// Builder constructs downstream payloads from enriched events.
type Builder struct{}

// NewBuilder creates a new payload builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build assembles the outgoing payload: one item per activity code,
// all sharing the common positional fields, with message identifiers
// assigned consecutively from baseMessageID along the activity order.
func (b *Builder) Build(evt *models.EnrichedEvent, attrs models.Attributes, activities []classifier.ActivityCode, baseMessageID int) *models.OutgoingPayload {
	vehicleRegNo := evt.DeviceInfo.Name
	if vehicleRegNo == "" {
		vehicleRegNo = "UNKNOWN"
	}
	imei := evt.DeviceInfo.IMEI
	if imei == "" {
		imei = "UNKNOWN"
	}

	mcc := defaultMCC
	if op, ok := attrs.String("operator"); ok && len(op) >= 3 {
		mcc = op[:3]
	}

	lac, _ := attrs.String("io206")
	cellID, _ := attrs.String("io205")

	base := models.PayloadItem{
		Latitude:        evt.Position.Latitude,
		Longitude:       evt.Position.Longitude,
		Altitude:        evt.Position.Altitude,
		Timestamp:       evt.DeviceTime.UnixMilli(),
		HorizontalSpeed: evt.Position.Speed,
		VerticalSpeed:   0,
		Bearing:         evt.Position.Course,
		SatelliteCount:  int(attrs.FloatOr(0, "sat", "satellites")),
		HDOP:            attrs.FloatOr(0, "hdop"),
		D2D3:            "3",
		RSSI:            fixedRSSI,
		LAC:             lac,
		CellID:          cellID,
		MCC:             mcc,
	}

	items := make([]models.PayloadItem, 0, len(activities))
	for i, activity := range activities {
		item := base
		item.MessageID = strconv.Itoa(baseMessageID + i)
		item.ActivityID = strconv.Itoa(int(activity))
		item.AddonInfo = b.addonInfo(activity, attrs, evt.Position)
		if activity == classifier.ActivityFuelReport {
			item.FuelInfo = b.fuelInfo(attrs)
		}
		items = append(items, item)
	}

	return &models.OutgoingPayload{
		VehicleRegNo: vehicleRegNo,
		Type:         payloadType,
		IMEI:         imei,
		Items:        items,
	}
}

// addonInfo builds the activity-specific supplement, or nil for
// activities without one.
func (b *Builder) addonInfo(activity classifier.ActivityCode, attrs models.Attributes, pos models.Position) *models.AddonInfo {
	switch {
	case activity == classifier.ActivityEngineOn || activity == classifier.ActivityEngineStart:
		return &models.AddonInfo{
			IdleTime: attrs.StringOr("0", "io73"),
		}

	case activity == classifier.ActivityEngineOff || activity == classifier.ActivityEngineStop:
		odometer := attrs.FloatOr(0, "odometer")
		return &models.AddonInfo{
			DistanceTravelled: strconv.FormatFloat(odometer/1000, 'f', 1, 64),
			TripDuration:      "0",
			AvgSpeed:          "0",
			MaxSpeed:          attrs.StringOr("0", "io19"),
		}

	case activity == classifier.ActivitySpeeding:
		speed := pos.Speed
		return &models.AddonInfo{
			Speed: &speed,
		}

	case activity == classifier.ActivityBatteryLow || activity == classifier.ActivityPowerDisconnected:
		extVoltage := attrs.FloatOr(0, "power")
		intVoltage := attrs.FloatOr(0, "battery")
		return &models.AddonInfo{
			ExtPowerVoltage:   strconv.FormatFloat(extVoltage, 'f', 2, 64),
			IntBatteryVoltage: strconv.FormatFloat(intVoltage, 'f', 2, 64),
		}

	case activity == classifier.ActivityExcessiveIdle:
		idleTime := "0.00"
		if v, ok := attrs.Float("io173"); ok {
			idleTime = strconv.FormatFloat(v/100, 'f', 2, 64)
		}
		return &models.AddonInfo{
			IdleTime: idleTime,
		}

	case activity == classifier.ActivityTampering:
		speed := pos.Speed
		return &models.AddonInfo{
			TamperingType: "Unplug while moving",
			SpeedAtEvent:  &speed,
		}

	case activity == classifier.ActivityIButtonScan:
		driverID, _ := attrs.String("driverUniqueId")
		return &models.AddonInfo{
			DriverIdentificationNo: ReverseHex(driverID),
		}

	case activity >= classifier.ActivityGeofenceFirst && activity <= classifier.ActivityGeofenceLast:
		return &models.AddonInfo{
			GeoName: attrs.StringOr("Unknown", "io215"),
			GeoID:   attrs.StringOr("0", "io216"),
		}

	default:
		return nil
	}
}

// fuelInfo builds the fuel-report supplement.
func (b *Builder) fuelInfo(attrs models.Attributes) *models.FuelInfo {
	return &models.FuelInfo{
		ValidFlag:   "0",
		SignalLevel: attrs.StringOr("0", "io182"),
		SoftStatus:  "0",
		HardFault:   attrs.StringOr("0", "io181"),
		FuelLevel:   attrs.StringOr("0", "io179"),
		RTFuelLevel: attrs.StringOr("0", "io179"),
		TankTemp:    int(math.Round(attrs.FloatOr(0, "io180") * 10)),
		Channel:     "1",
	}
}

// ReverseHex reverses a hexadecimal string by two-character byte
// groups and uppercases the result. Odd-length or empty input is
// returned unchanged.
func ReverseHex(hexStr string) string {
	if hexStr == "" || len(hexStr)%2 != 0 {
		return hexStr
	}

	var sb strings.Builder
	sb.Grow(len(hexStr))
	for i := len(hexStr) - 2; i >= 0; i -= 2 {
		sb.WriteString(hexStr[i : i+2])
	}
	return strings.ToUpper(sb.String())
}
