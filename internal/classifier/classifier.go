package classifier

import (
	"webcorp/telemetry-bridge/internal/models"
)

// ActivityCode is a semantic event category understood by the
// downstream provider.
type ActivityCode int

const (
	ActivityNormal            ActivityCode = 1
	ActivityEngineOn          ActivityCode = 2
	ActivityEngineOff         ActivityCode = 3
	ActivitySpeeding          ActivityCode = 4
	ActivityHarshBraking      ActivityCode = 5
	ActivityHarshTurning      ActivityCode = 6
	ActivityHarshAcceleration ActivityCode = 7
	ActivityPanic             ActivityCode = 8
	ActivityBatteryLow        ActivityCode = 9
	ActivityPowerDisconnected ActivityCode = 10
	ActivityExcessiveIdle     ActivityCode = 11
	ActivityCrash             ActivityCode = 12
	ActivitySOS               ActivityCode = 13
	ActivityTampering         ActivityCode = 14
	ActivityGreenDriving      ActivityCode = 15
	ActivityFuelReport        ActivityCode = 16
	ActivityInvalidScan       ActivityCode = 17
	ActivityEngineStart       ActivityCode = 18
	ActivityEngineStop        ActivityCode = 19
	ActivityGeofenceFirst     ActivityCode = 20
	ActivityGeofenceLast      ActivityCode = 23
	ActivityIButtonScan       ActivityCode = 24
)

// Source event codes that need contextual rules.
const (
	EventPanicDriver     = 2
	EventPanicPassenger  = 3
	EventSOS             = 6
	EventFuel            = 9
	EventExternalVoltage = 66
	EventPowerCut        = 67
	EventIButton         = 78
	EventInvalidScan     = 79
	EventBatteryLow      = 113
	EventIgnitionToggle  = 239
	EventMovementToggle  = 240
	EventGreenDuration   = 243
	EventCrash           = 247
	EventHarshAccel      = 249
	EventTripToggle      = 250
	EventIdleToggle      = 251
	EventExternalPower   = 252
	EventGreenDriving    = 253
	EventOverspeed       = 255
)

// Rule maps one event code to its activity codes given the event
// context. Rules are pure; each is independently testable.
type Rule func(attrs models.Attributes, pos models.Position) []ActivityCode

// staticActivities covers event codes that always map to the same
// single activity.
var staticActivities = map[int][]ActivityCode{
	EventBatteryLow:     {ActivityBatteryLow},
	EventOverspeed:      {ActivitySpeeding},
	EventIButton:        {ActivityIButtonScan},
	EventInvalidScan:    {ActivityInvalidScan},
	EventCrash:          {ActivityCrash},
	EventHarshAccel:     {ActivityHarshAcceleration},
	EventGreenDuration:  {ActivityGreenDriving},
	EventFuel:           {ActivityPanic},
	EventSOS:            {ActivitySOS},
	EventPanicDriver:    {ActivityPanic},
	EventPanicPassenger: {ActivitySOS},
}

var contextualRules = map[int]Rule{
	EventExternalVoltage: powerDisconnectRule,
	EventPowerCut:        powerDisconnectRule,
	EventExternalPower:   externalPowerRule,
	EventGreenDriving:    harshDrivingRule,
	EventIgnitionToggle:  ignitionRule,
	EventIdleToggle:      idleToggleRule,
	EventTripToggle:      tripToggleRule,
	EventMovementToggle:  movementToggleRule,
}

// Classify maps an event code plus context to an ordered list of
// activity codes. The order is significant: the caller assigns
// consecutive message identifiers along it.
func Classify(eventCode int, attrs models.Attributes, pos models.Position) []ActivityCode {
	if rule, ok := contextualRules[eventCode]; ok {
		return rule(attrs, pos)
	}
	if activities, ok := staticActivities[eventCode]; ok {
		out := make([]ActivityCode, len(activities))
		copy(out, activities)
		return out
	}
	return []ActivityCode{ActivityNormal}
}

// powerDisconnectRule always reports the disconnect and additionally
// reports tampering for any non-negative speed. The threshold is kept
// as observed in production even though it is effectively always true
// for valid readings.
func powerDisconnectRule(attrs models.Attributes, pos models.Position) []ActivityCode {
	if currentSpeed(attrs, pos) >= 0 {
		return []ActivityCode{ActivityPowerDisconnected, ActivityTampering}
	}
	return []ActivityCode{ActivityPowerDisconnected}
}

// externalPowerRule reports tampering only while moving, otherwise a
// plain power disconnect.
func externalPowerRule(attrs models.Attributes, pos models.Position) []ActivityCode {
	if currentSpeed(attrs, pos) > 1 {
		return []ActivityCode{ActivityTampering}
	}
	return []ActivityCode{ActivityPowerDisconnected}
}

func harshDrivingRule(attrs models.Attributes, pos models.Position) []ActivityCode {
	alarm, _ := attrs.String("alarm")
	switch alarm {
	case "hardAcceleration":
		return []ActivityCode{ActivityHarshAcceleration}
	case "hardBraking":
		return []ActivityCode{ActivityHarshBraking}
	case "hardCornering":
		return []ActivityCode{ActivityHarshTurning}
	default:
		return []ActivityCode{ActivityHarshAcceleration}
	}
}

func ignitionRule(attrs models.Attributes, pos models.Position) []ActivityCode {
	v, ok := attrs.Raw("ignition")
	if ok && models.Truthy(v) {
		return []ActivityCode{ActivityEngineOn}
	}
	return []ActivityCode{ActivityEngineOff}
}

func idleToggleRule(attrs models.Attributes, pos models.Position) []ActivityCode {
	v, ok := attrs.FirstTruthy("io251", "eventValue", "value")
	if ok && models.NumericBool(v) {
		return []ActivityCode{ActivityExcessiveIdle}
	}
	return []ActivityCode{ActivityNormal}
}

func tripToggleRule(attrs models.Attributes, pos models.Position) []ActivityCode {
	v, ok := attrs.FirstTruthy("io250", "eventValue", "value")
	if ok && models.NumericBool(v) {
		return []ActivityCode{ActivityEngineOn}
	}
	return []ActivityCode{ActivityEngineOff}
}

// movementToggleRule resolves the movement flag but the result does
// not influence the outcome; the observed behavior always reports the
// default activity. Kept as-is, suspected incomplete upstream.
func movementToggleRule(attrs models.Attributes, pos models.Position) []ActivityCode {
	v, ok := attrs.FirstTruthy("io240", "eventValue", "value", "motion")
	_ = ok && models.NumericBool(v)
	return []ActivityCode{ActivityNormal}
}

// currentSpeed resolves the speed at event time: the converted
// position speed when non-zero, else a speed attribute, else 0.
func currentSpeed(attrs models.Attributes, pos models.Position) float64 {
	if pos.Speed != 0 {
		return pos.Speed
	}
	if v, ok := attrs.FirstTruthy("speed"); ok {
		if f, ok := v.(float64); ok {
			return f
		}
		return attrs.FloatOr(0, "speed")
	}
	return 0
}
