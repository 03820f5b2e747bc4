package types

// ChargerInfo is published once per instance on "charger/<name>/info".
type ChargerInfo struct {
	Variant      string `json:"variant"`
	Addr         uint16 `json:"addr"`
	DetectorAddr uint16 `json:"detector_addr,omitempty"`
	ChipRev      uint8  `json:"chip_rev"`
	OTPRev       uint8  `json:"otp_rev"`
}

// ChargerValue is the retained status on "charger/<name>/value".
type ChargerValue struct {
	State      string   `json:"state" cbor:"1,keyasint"`
	Faults     []string `json:"faults,omitempty" cbor:"2,keyasint,omitempty"`
	Mode       string   `json:"mode" cbor:"3,keyasint"`
	Armed      bool     `json:"armed" cbor:"4,keyasint"`
	Stale      bool     `json:"stale,omitempty" cbor:"5,keyasint,omitempty"`
	ChgIn      string   `json:"chgin" cbor:"6,keyasint"`
	Battery    string   `json:"battery" cbor:"7,keyasint"`
	Thermistor string   `json:"thermistor" cbor:"8,keyasint"`
	ThermalReg bool     `json:"thermal_reg,omitempty" cbor:"9,keyasint,omitempty"`
	TS         int64    `json:"ts_ms" cbor:"10,keyasint"`
}

// ChargerEvent is published on "charger/<name>/event" when the state or
// fault set changes.
type ChargerEvent struct {
	Kind   string   `json:"kind" cbor:"1,keyasint"` // "state" | "fault" | "ack"
	From   string   `json:"from,omitempty" cbor:"2,keyasint,omitempty"`
	To     string   `json:"to,omitempty" cbor:"3,keyasint,omitempty"`
	Faults []string `json:"faults,omitempty" cbor:"4,keyasint,omitempty"`
	TS     int64    `json:"ts_ms" cbor:"5,keyasint"`
}

// ChargerConfigure is the "configure" verb payload. Nil leaves a field
// unchanged; FastChargeTimer_h 0 disables the safety timer.
type ChargerConfigure struct {
	FastChargeCurrent_mA *uint16 `json:"fast_charge_current_mA,omitempty"`
	InputCurrentLimit_mA *uint16 `json:"input_current_limit_mA,omitempty"`
	ChargeVoltage_mV     *uint16 `json:"charge_voltage_mV,omitempty"`
	MinSystemVoltage_mV  *uint16 `json:"min_system_voltage_mV,omitempty"`
	TopOffCurrent_mA     *uint16 `json:"top_off_current_mA,omitempty"`
	TopOffTime_s         *uint32 `json:"top_off_time_s,omitempty"`
	FastChargeTimer_h    *uint8  `json:"fast_charge_timer_h,omitempty"`
}

// ChargerDetect is the reply data of "detect" and "apply_policy".
type ChargerDetect struct {
	Class     string `json:"class"`
	Type      string `json:"type"`
	VBusValid bool   `json:"vbus_valid"`
	Running   bool   `json:"running,omitempty"`
	Limit_mA  uint16 `json:"limit_mA,omitempty"`
}
