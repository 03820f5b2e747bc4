package max7797x

// Variant identifies a member of the charger family.
type Variant uint8

const (
	VariantUnknown Variant = iota
	MAX77975               // 3.5 A fast charge
	MAX77976               // 5.5 A fast charge
)

func (v Variant) String() string {
	switch v {
	case MAX77975:
		return "max77975"
	case MAX77976:
		return "max77976"
	default:
		return "unknown"
	}
}

// ParseVariant accepts "max77975"/"77975" and "max77976"/"77976".
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "max77975", "MAX77975", "77975":
		return MAX77975, true
	case "max77976", "MAX77976", "77976":
		return MAX77976, true
	default:
		return VariantUnknown, false
	}
}

// Field names a configurable or status bitfield.
type Field uint8

const (
	FieldMode Field = iota
	FieldWatchdogEnable
	FieldFastChargeTimer
	FieldFastChargeCurrent
	FieldTopOffCurrent
	FieldTopOffTime
	FieldChargeVoltage
	FieldMinSystemVoltage
	FieldSysCurrentLimit
	FieldSysRecycle
	FieldWatchdogClear
	FieldChargerProtect
	FieldInputCurrentLimit
	numFields
)

var fieldNames = [numFields]string{
	FieldMode:              "mode",
	FieldWatchdogEnable:    "watchdog_enable",
	FieldFastChargeTimer:   "fast_charge_timer",
	FieldFastChargeCurrent: "fast_charge_current",
	FieldTopOffCurrent:     "top_off_current",
	FieldTopOffTime:        "top_off_time",
	FieldChargeVoltage:     "charge_voltage",
	FieldMinSystemVoltage:  "min_system_voltage",
	FieldSysCurrentLimit:   "sys_current_limit",
	FieldSysRecycle:        "sys_recycle",
	FieldWatchdogClear:     "watchdog_clear",
	FieldChargerProtect:    "charger_protect",
	FieldInputCurrentLimit: "input_current_limit",
}

func (f Field) String() string {
	if f < numFields {
		return fieldNames[f]
	}
	return "unknown"
}

// Kind selects how a field's code maps to a value.
type Kind uint8

const (
	KindRaw    Kind = iota // value == code
	KindLinear             // value = Base + code*Step
	KindTable              // value = Table[code]
)

// Descriptor locates a field and defines its valid domain. Units are mA,
// mV or seconds depending on the field.
type Descriptor struct {
	Field     Field
	Reg       Reg
	Shift     uint8
	Width     uint8
	Kind      Kind
	Base      uint32
	Step      uint32
	CodeMin   uint8
	CodeMax   uint8
	Codes     []uint8  // KindRaw: allowed codes; nil means CodeMin..CodeMax
	Table     []uint32 // KindTable: value per code
	Protected bool     // write requires CHGPROT unlock
	Default   uint32   // decoded reset value
}

// Mask returns the field bits within its register.
func (d Descriptor) Mask() byte { return byte((1<<d.Width)-1) << d.Shift }

// Min returns the smallest encodable value.
func (d Descriptor) Min() uint32 {
	switch d.Kind {
	case KindLinear:
		return d.Base + uint32(d.CodeMin)*d.Step
	case KindTable:
		lo := d.Table[0]
		for _, v := range d.Table {
			if v < lo {
				lo = v
			}
		}
		return lo
	default:
		return uint32(d.CodeMin)
	}
}

// Max returns the largest encodable value.
func (d Descriptor) Max() uint32 {
	switch d.Kind {
	case KindLinear:
		return d.Base + uint32(d.CodeMax)*d.Step
	case KindTable:
		hi := d.Table[0]
		for _, v := range d.Table {
			if v > hi {
				hi = v
			}
		}
		return hi
	default:
		return uint32(d.CodeMax)
	}
}

const (
	minute = 60
	hour   = 60 * minute
)

var (
	fastChargeTimerTable = []uint32{0, 3 * hour, 4 * hour, 5 * hour, 6 * hour, 7 * hour, 8 * hour, 10 * hour}
	topOffTimeTable      = []uint32{30, 10 * minute, 20 * minute, 30 * minute, 40 * minute, 50 * minute, 60 * minute, 70 * minute}
	modeCodes            = []uint8{uint8(ModeOff), uint8(ModeBuck), uint8(ModeCharge), uint8(ModeBoost), uint8(ModeOTG)}
)

// max77975Fields is the MAX77975 register map; MAX77976 differs only in the
// fast-charge current ceiling.
var max77975Fields = [numFields]Descriptor{
	FieldMode: {
		Field: FieldMode, Reg: regCnfg00, Shift: 0, Width: 4, Kind: KindRaw,
		CodeMax: 0x0F, Codes: modeCodes, Default: uint32(ModeCharge),
	},
	FieldWatchdogEnable: {
		Field: FieldWatchdogEnable, Reg: regCnfg00, Shift: 4, Width: 1, Kind: KindRaw,
		CodeMax: 1,
	},
	FieldFastChargeTimer: {
		Field: FieldFastChargeTimer, Reg: regCnfg01, Shift: 0, Width: 3, Kind: KindTable,
		CodeMax: 7, Table: fastChargeTimerTable, Protected: true, Default: 4 * hour,
	},
	FieldFastChargeCurrent: {
		Field: FieldFastChargeCurrent, Reg: regCnfg02, Shift: 0, Width: 7, Kind: KindLinear,
		Base: 0, Step: 50, CodeMin: 2, CodeMax: 70, Protected: true, Default: 500,
	},
	FieldTopOffCurrent: {
		Field: FieldTopOffCurrent, Reg: regCnfg03, Shift: 0, Width: 3, Kind: KindLinear,
		Base: 150, Step: 50, CodeMin: 0, CodeMax: 7, Protected: true, Default: 150,
	},
	FieldTopOffTime: {
		Field: FieldTopOffTime, Reg: regCnfg03, Shift: 3, Width: 3, Kind: KindTable,
		CodeMax: 7, Table: topOffTimeTable, Protected: true, Default: 30 * minute,
	},
	FieldChargeVoltage: {
		Field: FieldChargeVoltage, Reg: regCnfg04, Shift: 0, Width: 6, Kind: KindLinear,
		Base: 4000, Step: 10, CodeMin: 0, CodeMax: 50, Protected: true, Default: 4200,
	},
	FieldMinSystemVoltage: {
		Field: FieldMinSystemVoltage, Reg: regCnfg04, Shift: 6, Width: 2, Kind: KindLinear,
		Base: 3400, Step: 100, CodeMin: 0, CodeMax: 3, Protected: true, Default: 3600,
	},
	FieldSysCurrentLimit: {
		Field: FieldSysCurrentLimit, Reg: regCnfg05, Shift: 0, Width: 4, Kind: KindLinear,
		Base: 2500, Step: 500, CodeMin: 0, CodeMax: 15, Protected: true, Default: 6000,
	},
	FieldSysRecycle: {
		Field: FieldSysRecycle, Reg: regCnfg05, Shift: 4, Width: 1, Kind: KindRaw,
		CodeMax: 1, Protected: true,
	},
	FieldWatchdogClear: {
		Field: FieldWatchdogClear, Reg: regCnfg06, Shift: 0, Width: 2, Kind: KindRaw,
		CodeMax: 3,
	},
	FieldChargerProtect: {
		Field: FieldChargerProtect, Reg: regCnfg06, Shift: 2, Width: 2, Kind: KindRaw,
		CodeMax: 3,
	},
	FieldInputCurrentLimit: {
		Field: FieldInputCurrentLimit, Reg: regCnfg09, Shift: 0, Width: 6, Kind: KindLinear,
		Base: 50, Step: 50, CodeMin: 1, CodeMax: 63, Default: 500,
	},
}

var max77976Fields = func() [numFields]Descriptor {
	t := max77975Fields
	t[FieldFastChargeCurrent].CodeMax = 110
	return t
}()

// Lookup returns the descriptor of f for variant v. An unknown variant uses
// the MAX77975 map, whose ranges are the narrower of the two.
func Lookup(v Variant, f Field) (Descriptor, bool) {
	if f >= numFields {
		return Descriptor{}, false
	}
	if v == MAX77976 {
		return max77976Fields[f], true
	}
	return max77975Fields[f], true
}

// Fields lists every named field in register order.
func Fields() []Field {
	out := make([]Field, 0, numFields)
	for f := Field(0); f < numFields; f++ {
		out = append(out, f)
	}
	return out
}
