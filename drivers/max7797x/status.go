package max7797x

// ChgIn is DETAILS_00.CHGIN_DTLS.
type ChgIn uint8

const (
	ChgInUndervoltage ChgIn = iota // VCHGIN < UVLO
	ChgInBelowBattery              // UVLO < VCHGIN < VBATT + VCHGIN2SYS
	ChgInOvervoltage               // VCHGIN > OVLO
	ChgInValid
)

func (c ChgIn) String() string {
	switch c {
	case ChgInUndervoltage:
		return "undervoltage"
	case ChgInBelowBattery:
		return "below_battery"
	case ChgInOvervoltage:
		return "overvoltage"
	default:
		return "valid"
	}
}

// BatterySense is DETAILS_00.SPSN_DTLS.
type BatterySense uint8

const (
	SenseConnected BatterySense = iota
	SensePositiveOpen
	SenseNegativeOpen
	SenseBothOpen
)

// BatteryDetails is DETAILS_01.BAT_DTLS.
type BatteryDetails uint8

const (
	BatteryRemoved          BatteryDetails = 0 // adapter present, battery detached
	BatteryPrequalification BatteryDetails = 1 // VBATT < VTRICKLE
	BatteryTimerFault       BatteryDetails = 2 // exceeded tFC
	BatteryRegular          BatteryDetails = 3 // VSYSMIN < VBATT < VBATTREG + VCOV
	BatteryLow              BatteryDetails = 4 // VTRICKLE < VBATT < VSYSMIN
	BatteryOvervoltage      BatteryDetails = 5 // VBATT > VBATTREG + VCOV for 30 ms
	batteryReserved         BatteryDetails = 6
	BatteryOnly             BatteryDetails = 7 // no valid adapter
)

func (b BatteryDetails) String() string {
	switch b {
	case BatteryRemoved:
		return "removed"
	case BatteryPrequalification:
		return "prequalification"
	case BatteryTimerFault:
		return "timer_fault"
	case BatteryRegular:
		return "regular"
	case BatteryLow:
		return "low"
	case BatteryOvervoltage:
		return "overvoltage"
	case BatteryOnly:
		return "battery_only"
	default:
		return "reserved"
	}
}

// ChargerDetails is DETAILS_01.CHG_DTLS.
type ChargerDetails uint8

const (
	ChgPrequalification  ChargerDetails = 0x0
	ChgConstantCurrent   ChargerDetails = 0x1
	ChgConstantVoltage   ChargerDetails = 0x2
	ChgTopOff            ChargerDetails = 0x3
	ChgDone              ChargerDetails = 0x4
	ChgTimerFault        ChargerDetails = 0x6
	ChgQBattDisabled     ChargerDetails = 0x7
	ChgOff               ChargerDetails = 0x8
	ChgHighTemperature   ChargerDetails = 0xA
	ChgWatchdogTimer     ChargerDetails = 0xB
	ChgJeita             ChargerDetails = 0xC
	ChgThermistorRemoval ChargerDetails = 0xD
	ChgSuspendPin        ChargerDetails = 0xE
)

func (c ChargerDetails) String() string {
	switch c {
	case ChgPrequalification:
		return "prequalification"
	case ChgConstantCurrent:
		return "constant_current"
	case ChgConstantVoltage:
		return "constant_voltage"
	case ChgTopOff:
		return "top_off"
	case ChgDone:
		return "done"
	case ChgTimerFault:
		return "timer_fault"
	case ChgQBattDisabled:
		return "qbatt_disabled"
	case ChgOff:
		return "off"
	case ChgHighTemperature:
		return "high_temperature"
	case ChgWatchdogTimer:
		return "watchdog_timer"
	case ChgJeita:
		return "jeita"
	case ChgThermistorRemoval:
		return "thermistor_removal"
	case ChgSuspendPin:
		return "suspend_pin"
	default:
		return "reserved"
	}
}

// ThermistorDetails is DETAILS_02.THM_DTLS.
type ThermistorDetails uint8

const (
	ThmCold ThermistorDetails = iota // charging suspended
	ThmCool
	ThmNormal
	ThmWarm
	ThmHot // charging suspended
	ThmRemoved
	ThmDisabled
	thmReserved
)

func (t ThermistorDetails) String() string {
	switch t {
	case ThmCold:
		return "cold"
	case ThmCool:
		return "cool"
	case ThmNormal:
		return "normal"
	case ThmWarm:
		return "warm"
	case ThmHot:
		return "hot"
	case ThmRemoved:
		return "removed"
	case ThmDisabled:
		return "disabled"
	default:
		return "reserved"
	}
}

// BypassDetails is the DETAILS_02.BYP_DTLS bit set.
type BypassDetails uint8

const (
	BypassOTGCurrentLimit   BypassDetails = 1 << 0
	BypassBoostCurrentLimit BypassDetails = 1 << 1
	BypassBuckCurrentLimit  BypassDetails = 1 << 2
	BypassBoostOn           BypassDetails = 1 << 3
)

func (b BypassDetails) Has(flag BypassDetails) bool { return b&flag != 0 }

// Details is the decoded DETAILS_00..02 block.
type Details struct {
	Sense             BatterySense
	ChgIn             ChgIn
	Charger           ChargerDetails
	Battery           BatteryDetails
	ThermalRegulation bool // junction above REGTEMP, current may fold back
	Bypass            BypassDetails
	Thermistor        ThermistorDetails
}

// DecodeDetails decodes DETAILS_00, DETAILS_01 and DETAILS_02 in order.
func DecodeDetails(b [3]byte) Details {
	return Details{
		Sense:             BatterySense((b[0] >> 1) & 0x03),
		ChgIn:             ChgIn((b[0] >> 5) & 0x03),
		Charger:           ChargerDetails(b[1] & 0x0F),
		Battery:           BatteryDetails((b[1] >> 4) & 0x07),
		ThermalRegulation: b[1]&0x80 != 0,
		Bypass:            BypassDetails(b[2] & 0x0F),
		Thermistor:        ThermistorDetails((b[2] >> 4) & 0x07),
	}
}

// ChargeState is the lifecycle phase derived from one status read.
type ChargeState uint8

const (
	StateOff ChargeState = iota
	StateDetecting
	StatePrecharge
	StateFastCharge
	StateTopOff
	StateDone
	StateFault
	StateUnknown // reserved CHG_DTLS pattern
)

func (s ChargeState) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateDetecting:
		return "detecting"
	case StatePrecharge:
		return "precharge"
	case StateFastCharge:
		return "fast_charge"
	case StateTopOff:
		return "top_off"
	case StateDone:
		return "done"
	case StateFault:
		return "fault"
	default:
		return "unknown"
	}
}

// FaultFlags is a snapshot of active fault conditions.
type FaultFlags uint8

const (
	FaultThermalShutdown FaultFlags = 1 << iota
	FaultInputOvervoltage
	FaultBatteryOvervoltage
	FaultWatchdogTimeout
	FaultChargeTimer
	FaultBatteryMissing
	FaultBatteryTemperature
)

func (f FaultFlags) Has(flag FaultFlags) bool { return f&flag != 0 }

var faultNames = [...]string{
	"thermal_shutdown",
	"input_overvoltage",
	"battery_overvoltage",
	"watchdog_timeout",
	"charge_timer",
	"battery_missing",
	"battery_temperature",
}

// Names lists the set flags, lowest bit first.
func (f FaultFlags) Names() []string {
	var out []string
	for i, n := range faultNames {
		if f&(1<<i) != 0 {
			out = append(out, n)
		}
	}
	return out
}

func (f FaultFlags) String() string {
	if f == 0 {
		return "none"
	}
	s := ""
	for _, n := range f.Names() {
		if s != "" {
			s += "|"
		}
		s += n
	}
	return s
}

// Status is the outcome of one RefreshStatus.
type Status struct {
	State   ChargeState
	Faults  FaultFlags
	Mode    Mode
	Details Details
	// Stale is set when a later bus operation failed; the device may have
	// moved on and State should not be trusted until the next refresh.
	Stale bool
}

func faultsOf(det Details) FaultFlags {
	var f FaultFlags
	if det.ChgIn == ChgInOvervoltage {
		f |= FaultInputOvervoltage
	}
	if det.Battery == BatteryOvervoltage {
		f |= FaultBatteryOvervoltage
	}
	switch det.Charger {
	case ChgHighTemperature:
		f |= FaultThermalShutdown
	case ChgWatchdogTimer:
		f |= FaultWatchdogTimeout
	case ChgTimerFault:
		f |= FaultChargeTimer
	case ChgThermistorRemoval:
		f |= FaultBatteryMissing
	case ChgJeita:
		if det.Thermistor == ThmCold || det.Thermistor == ThmHot {
			f |= FaultBatteryTemperature
		}
	}
	if det.Battery == BatteryTimerFault {
		f |= FaultChargeTimer
	}
	// BAT_DTLS removal is only meaningful with a valid adapter.
	if det.Battery == BatteryRemoved && det.ChgIn == ChgInValid {
		f |= FaultBatteryMissing
	}
	return f
}

func stateOf(mode Mode, det Details, faults FaultFlags) ChargeState {
	if faults != 0 {
		return StateFault
	}
	switch det.Charger {
	case ChgPrequalification:
		return StatePrecharge
	case ChgConstantCurrent, ChgConstantVoltage, ChgJeita:
		return StateFastCharge
	case ChgTopOff:
		return StateTopOff
	case ChgDone:
		return StateDone
	case ChgOff:
		// Charger on and input valid but not yet charging: input
		// qualification is still running.
		if mode.Charging() && det.ChgIn == ChgInValid {
			return StateDetecting
		}
		return StateOff
	case ChgQBattDisabled, ChgSuspendPin:
		return StateOff
	default:
		return StateUnknown
	}
}

func deriveStatus(mode Mode, det Details) Status {
	f := faultsOf(det)
	return Status{
		State:   stateOf(mode, det, f),
		Faults:  f,
		Mode:    mode,
		Details: det,
	}
}
