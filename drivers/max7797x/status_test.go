package max7797x

import "testing"

func TestDecodeDetails(t *testing.T) {
	// CHGIN valid, sense both open; CHG_DTLS=done, BAT regular, TREG;
	// boost on + buck ilim, THM warm.
	got := DecodeDetails([3]byte{0x66, 0xB4, 0x3C})
	want := Details{
		Sense:             SenseBothOpen,
		ChgIn:             ChgInValid,
		Charger:           ChgDone,
		Battery:           BatteryRegular,
		ThermalRegulation: true,
		Bypass:            BypassBoostOn | BypassBuckCurrentLimit,
		Thermistor:        ThmWarm,
	}
	if got != want {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestDeriveStatus(t *testing.T) {
	const (
		chgInValid = 0x60
		batRegular = 0x30
		thmNormal  = 0x20
	)
	cases := []struct {
		name   string
		mode   Mode
		b      [3]byte
		state  ChargeState
		faults FaultFlags
	}{
		{"precharge", ModeCharge, [3]byte{chgInValid, 0x10 | byte(ChgPrequalification), thmNormal}, StatePrecharge, 0},
		{"cc", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgConstantCurrent), thmNormal}, StateFastCharge, 0},
		{"cv", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgConstantVoltage), thmNormal}, StateFastCharge, 0},
		{"jeita warm", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgJeita), 0x30}, StateFastCharge, 0},
		{"jeita hot", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgJeita), 0x40}, StateFault, FaultBatteryTemperature},
		{"top off", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgTopOff), thmNormal}, StateTopOff, 0},
		{"done", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgDone), thmNormal}, StateDone, 0},
		{"detecting", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgOff), thmNormal}, StateDetecting, 0},
		{"off in buck", ModeBuck, [3]byte{chgInValid, batRegular | byte(ChgOff), thmNormal}, StateOff, 0},
		{"off no input", ModeCharge, [3]byte{0x00, 0x70 | byte(ChgOff), thmNormal}, StateOff, 0},
		{"suspend pin", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgSuspendPin), thmNormal}, StateOff, 0},
		{"thermal", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgHighTemperature), thmNormal}, StateFault, FaultThermalShutdown},
		{"watchdog", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgWatchdogTimer), thmNormal}, StateFault, FaultWatchdogTimeout},
		{"timer", ModeCharge, [3]byte{chgInValid, byte(BatteryTimerFault)<<4 | byte(ChgTimerFault), thmNormal}, StateFault, FaultChargeTimer},
		{"chgin ovp", ModeCharge, [3]byte{0x40, batRegular | byte(ChgOff), thmNormal}, StateFault, FaultInputOvervoltage},
		{"bat ovp", ModeCharge, [3]byte{chgInValid, byte(BatteryOvervoltage)<<4 | byte(ChgOff), thmNormal}, StateFault, FaultBatteryOvervoltage},
		{"battery removed", ModeCharge, [3]byte{chgInValid, byte(ChgOff), thmNormal}, StateFault, FaultBatteryMissing},
		{"thermistor removed", ModeCharge, [3]byte{chgInValid, batRegular | byte(ChgThermistorRemoval), 0x50}, StateFault, FaultBatteryMissing},
		{"reserved", ModeCharge, [3]byte{chgInValid, batRegular | 0x05, thmNormal}, StateUnknown, 0},
	}
	for _, tc := range cases {
		st := deriveStatus(tc.mode, DecodeDetails(tc.b))
		if st.State != tc.state || st.Faults != tc.faults {
			t.Errorf("%s: got %v/%v, want %v/%v", tc.name, st.State, st.Faults, tc.state, tc.faults)
		}
	}
}

func TestDeriveStatusTotal(t *testing.T) {
	for b1 := 0; b1 < 256; b1++ {
		for _, b0 := range []byte{0x00, 0x20, 0x40, 0x60} {
			st := deriveStatus(ModeCharge, DecodeDetails([3]byte{b0, byte(b1), 0x20}))
			if st.State > StateUnknown {
				t.Fatalf("details %#02x/%#02x: undefined state %d", b0, b1, st.State)
			}
			if (st.Faults != 0) != (st.State == StateFault) {
				t.Fatalf("details %#02x/%#02x: faults %v with state %v", b0, b1, st.Faults, st.State)
			}
		}
	}
}

func TestFaultFlagsString(t *testing.T) {
	if got := FaultFlags(0).String(); got != "none" {
		t.Fatalf("got %q", got)
	}
	f := FaultThermalShutdown | FaultWatchdogTimeout
	if got := f.String(); got != "thermal_shutdown|watchdog_timeout" {
		t.Fatalf("got %q", got)
	}
}
