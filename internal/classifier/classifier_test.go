package classifier

import (
	"reflect"
	"testing"

	"webcorp/telemetry-bridge/internal/models"
)

func TestClassify_StaticTable(t *testing.T) {
	tests := []struct {
		name      string
		eventCode int
		want      []ActivityCode
	}{
		{"battery low", 113, []ActivityCode{ActivityBatteryLow}},
		{"overspeed", 255, []ActivityCode{ActivitySpeeding}},
		{"ibutton", 78, []ActivityCode{ActivityIButtonScan}},
		{"invalid scan", 79, []ActivityCode{ActivityInvalidScan}},
		{"crash", 247, []ActivityCode{ActivityCrash}},
		{"harsh accel", 249, []ActivityCode{ActivityHarshAcceleration}},
		{"green duration", 243, []ActivityCode{ActivityGreenDriving}},
		{"fuel", 9, []ActivityCode{ActivityPanic}},
		{"sos", 6, []ActivityCode{ActivitySOS}},
		{"unknown falls back", 999, []ActivityCode{ActivityNormal}},
		{"zero falls back", 0, []ActivityCode{ActivityNormal}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.eventCode, models.Attributes{}, models.Position{})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%d) = %v, want %v", tt.eventCode, got, tt.want)
			}
		})
	}
}

func TestClassify_PowerDisconnect(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		attrs models.Attributes
		pos   models.Position
		want  []ActivityCode
	}{
		{
			name:  "moving emits disconnect and tampering",
			code:  67,
			attrs: models.Attributes{"speed": float64(5)},
			want:  []ActivityCode{ActivityPowerDisconnected, ActivityTampering},
		},
		{
			// Speed zero still counts as tampering, preserved behavior
			name: "stationary also emits both",
			code: 66,
			want: []ActivityCode{ActivityPowerDisconnected, ActivityTampering},
		},
		{
			name: "position speed used",
			code: 66,
			pos:  models.Position{Speed: 42},
			want: []ActivityCode{ActivityPowerDisconnected, ActivityTampering},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := tt.attrs
			if attrs == nil {
				attrs = models.Attributes{}
			}
			got := Classify(tt.code, attrs, tt.pos)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassify_ExternalPower(t *testing.T) {
	tests := []struct {
		name string
		pos  models.Position
		want []ActivityCode
	}{
		{"moving means tampering", models.Position{Speed: 5}, []ActivityCode{ActivityTampering}},
		{"slow means disconnect", models.Position{Speed: 0.5}, []ActivityCode{ActivityPowerDisconnected}},
		{"stationary means disconnect", models.Position{}, []ActivityCode{ActivityPowerDisconnected}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(252, models.Attributes{}, tt.pos)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(252) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_HarshDriving(t *testing.T) {
	tests := []struct {
		name  string
		attrs models.Attributes
		want  []ActivityCode
	}{
		{"acceleration", models.Attributes{"alarm": "hardAcceleration"}, []ActivityCode{ActivityHarshAcceleration}},
		{"braking", models.Attributes{"alarm": "hardBraking"}, []ActivityCode{ActivityHarshBraking}},
		{"cornering", models.Attributes{"alarm": "hardCornering"}, []ActivityCode{ActivityHarshTurning}},
		{"unknown alarm falls back", models.Attributes{"alarm": "somethingElse"}, []ActivityCode{ActivityHarshAcceleration}},
		{"missing alarm falls back", models.Attributes{}, []ActivityCode{ActivityHarshAcceleration}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(253, tt.attrs, models.Position{})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(253) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_Toggles(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		attrs models.Attributes
		want  []ActivityCode
	}{
		{"ignition on", 239, models.Attributes{"ignition": true}, []ActivityCode{ActivityEngineOn}},
		{"ignition off", 239, models.Attributes{"ignition": false}, []ActivityCode{ActivityEngineOff}},
		{"ignition missing", 239, models.Attributes{}, []ActivityCode{ActivityEngineOff}},
		{"idling", 251, models.Attributes{"io251": float64(1)}, []ActivityCode{ActivityExcessiveIdle}},
		{"not idling", 251, models.Attributes{"io251": float64(0)}, []ActivityCode{ActivityNormal}},
		{"idle via eventValue", 251, models.Attributes{"eventValue": float64(1)}, []ActivityCode{ActivityExcessiveIdle}},
		{"trip start", 250, models.Attributes{"io250": float64(1)}, []ActivityCode{ActivityEngineOn}},
		{"trip stop", 250, models.Attributes{"io250": float64(0)}, []ActivityCode{ActivityEngineOff}},
		{"movement always default", 240, models.Attributes{"motion": true}, []ActivityCode{ActivityNormal}},
		{"movement stop also default", 240, models.Attributes{"io240": float64(0)}, []ActivityCode{ActivityNormal}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.code, tt.attrs, models.Position{})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%d, %v) = %v, want %v", tt.code, tt.attrs, got, tt.want)
			}
		})
	}
}

func TestClassify_IsDeterministic(t *testing.T) {
	attrs := models.Attributes{"speed": float64(5)}
	first := Classify(67, attrs, models.Position{})
	for i := 0; i < 10; i++ {
		if got := Classify(67, attrs, models.Position{}); !reflect.DeepEqual(got, first) {
			t.Fatalf("Classify not deterministic: %v vs %v", got, first)
		}
	}
}
