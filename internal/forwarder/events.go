package forwarder

// eventNames maps source event codes to human-readable names used
// when the record carries no explicit event text.
var eventNames = map[int]string{
	0:   "Ignition Off",
	1:   "Ignition On",
	2:   "Driver Panic",
	3:   "Passenger Panic",
	4:   "Movement Start",
	5:   "Movement Stop",
	6:   "SOS Button Pressed",
	7:   "Geofence Enter",
	8:   "Geofence Exit",
	9:   "Fuel Event",
	10:  "Low Battery",
	11:  "Fuel Drop",
	12:  "Fuel Fill",
	13:  "Door Open",
	14:  "Door Close",
	15:  "Tamper Alarm",
	16:  "Temperature Alarm",
	17:  "Shock Alarm",
	18:  "Maintenance Reminder",
	66:  "External Voltage",
	78:  "iButton",
	113: "Battery Low",
	180: "Digital Output 2",
	239: "Ignition On/Off",
	243: "Green Driving Duration",
	247: "Crash",
	251: "Idle",
	252: "External Power",
	253: "Green Driving",
	255: "Overspeed",
}
