package max7797x

import (
	"time"

	"powercode-go/errcode"
)

// FastChargeTimerOff disables the fast-charge safety timer.
const FastChargeTimerOff time.Duration = -1

// Configuration is a requested set of charger parameters. A zero field
// leaves the register value unchanged.
type Configuration struct {
	FastChargeCurrent_mA uint16
	InputCurrentLimit_mA uint16
	ChargeVoltage_mV     uint16
	MinSystemVoltage_mV  uint16
	TopOffCurrent_mA     uint16
	TopOffTime           time.Duration
	FastChargeTimer      time.Duration // FastChargeTimerOff disables
}

// IsZero reports whether c requests no change.
func (c Configuration) IsZero() bool { return c == Configuration{} }

type fieldValue struct {
	f Field
	v uint32
}

// values lists the requested fields in register order.
func (c Configuration) values(buf []fieldValue) ([]fieldValue, error) {
	out := buf[:0]
	switch {
	case c.FastChargeTimer == FastChargeTimerOff:
		out = append(out, fieldValue{FieldFastChargeTimer, 0})
	case c.FastChargeTimer != 0:
		s, ok := seconds(c.FastChargeTimer)
		if !ok {
			return nil, outOfRange(max77975Fields[FieldFastChargeTimer])
		}
		out = append(out, fieldValue{FieldFastChargeTimer, s})
	}
	if c.FastChargeCurrent_mA != 0 {
		out = append(out, fieldValue{FieldFastChargeCurrent, uint32(c.FastChargeCurrent_mA)})
	}
	if c.TopOffCurrent_mA != 0 {
		out = append(out, fieldValue{FieldTopOffCurrent, uint32(c.TopOffCurrent_mA)})
	}
	if c.TopOffTime != 0 {
		s, ok := seconds(c.TopOffTime)
		if !ok {
			return nil, outOfRange(max77975Fields[FieldTopOffTime])
		}
		out = append(out, fieldValue{FieldTopOffTime, s})
	}
	if c.ChargeVoltage_mV != 0 {
		out = append(out, fieldValue{FieldChargeVoltage, uint32(c.ChargeVoltage_mV)})
	}
	if c.MinSystemVoltage_mV != 0 {
		out = append(out, fieldValue{FieldMinSystemVoltage, uint32(c.MinSystemVoltage_mV)})
	}
	if c.InputCurrentLimit_mA != 0 {
		out = append(out, fieldValue{FieldInputCurrentLimit, uint32(c.InputCurrentLimit_mA)})
	}
	return out, nil
}

func seconds(d time.Duration) (uint32, bool) {
	if d <= 0 || d%time.Second != 0 || d > 24*time.Hour {
		return 0, false
	}
	return uint32(d / time.Second), true
}

// ResetConfiguration returns the power-on configuration of variant v.
func ResetConfiguration(v Variant) Configuration {
	def := func(f Field) uint32 {
		d, _ := Lookup(v, f)
		return d.Default
	}
	return Configuration{
		FastChargeCurrent_mA: uint16(def(FieldFastChargeCurrent)),
		InputCurrentLimit_mA: uint16(def(FieldInputCurrentLimit)),
		ChargeVoltage_mV:     uint16(def(FieldChargeVoltage)),
		MinSystemVoltage_mV:  uint16(def(FieldMinSystemVoltage)),
		TopOffCurrent_mA:     uint16(def(FieldTopOffCurrent)),
		TopOffTime:           time.Duration(def(FieldTopOffTime)) * time.Second,
		FastChargeTimer:      time.Duration(def(FieldFastChargeTimer)) * time.Second,
	}
}

// ---------------- Commands ----------------

// Enable switches the charger on (MODE = charge). It is refused with
// errcode.FaultActive while a fault is unacknowledged. The reported state
// only changes on the next RefreshStatus.
func (d *Device) Enable() error {
	if !d.armed {
		return &errcode.E{C: errcode.FaultActive, Op: "max7797x.enable", Err: ErrNotArmed}
	}
	return d.modifyField("enable", FieldMode, uint32(ModeCharge))
}

// Disable switches the charger off and leaves the buck supplying the
// system (MODE = buck). Always permitted.
func (d *Device) Disable() error {
	return d.modifyField("disable", FieldMode, uint32(ModeBuck))
}

// SetMode writes MODE directly. Modes that charge are subject to the same
// fault gate as Enable.
func (d *Device) SetMode(m Mode) error {
	if m.Charging() && !d.armed {
		return &errcode.E{C: errcode.FaultActive, Op: "max7797x.set_mode", Err: ErrNotArmed}
	}
	return d.modifyField("set_mode", FieldMode, uint32(m))
}

// Mode reads CHG_CNFG_00.MODE.
func (d *Device) Mode() (Mode, error) {
	v, err := d.readField("mode", FieldMode)
	return Mode(v), err
}

// ApplyConfiguration validates every requested field before any bus
// traffic. A single invalid field fails the whole call with
// errcode.InvalidConfiguration and nothing is written.
//
// Valid requests are merged into the current register contents and only
// changed registers are written, with the protected registers unlocked for
// the duration. If a write fails, registers already written are restored
// best-effort and the last status is marked stale.
func (d *Device) ApplyConfiguration(cfg Configuration) error {
	var buf [7]fieldValue
	vals, err := cfg.values(buf[:])
	if err != nil {
		return &errcode.E{C: errcode.InvalidConfiguration, Op: "max7797x.apply_configuration", Err: err}
	}
	return d.applyFields("apply_configuration", vals)
}

// SetSysCurrentLimit sets the battery-to-system overcurrent threshold and
// whether the charger recycles after it trips.
func (d *Device) SetSysCurrentLimit(mA uint16, recycle bool) error {
	var rec uint32
	if recycle {
		rec = 1
	}
	return d.applyFields("set_sys_current_limit", []fieldValue{
		{FieldSysCurrentLimit, uint32(mA)},
		{FieldSysRecycle, rec},
	})
}

// SetWatchdog enables or disables the charger I²C watchdog. While enabled
// the host must KickWatchdog before the timer expires.
func (d *Device) SetWatchdog(on bool) error {
	var v uint32
	if on {
		v = 1
	}
	return d.modifyField("set_watchdog", FieldWatchdogEnable, v)
}

// KickWatchdog resets the watchdog timer (WDTCLR = 01).
func (d *Device) KickWatchdog() error {
	return d.modifyField("kick_watchdog", FieldWatchdogClear, wdtClear)
}

// EnterShipMode disconnects the battery from the system. The device only
// leaves ship mode on a valid input or a button press.
func (d *Device) EnterShipMode() error {
	return d.writeReg("enter_ship_mode", regShipControl, shipModeEnter)
}

// ReadConfiguration decodes the configuration registers. A disabled
// fast-charge timer reads back as FastChargeTimerOff.
func (d *Device) ReadConfiguration() (Configuration, error) {
	var c Configuration
	var err error
	read := func(f Field) uint32 {
		if err != nil {
			return 0
		}
		var v uint32
		v, err = d.readField("read_configuration", f)
		return v
	}
	timer := read(FieldFastChargeTimer)
	c.FastChargeCurrent_mA = uint16(read(FieldFastChargeCurrent))
	c.TopOffCurrent_mA = uint16(read(FieldTopOffCurrent))
	c.TopOffTime = time.Duration(read(FieldTopOffTime)) * time.Second
	c.ChargeVoltage_mV = uint16(read(FieldChargeVoltage))
	c.MinSystemVoltage_mV = uint16(read(FieldMinSystemVoltage))
	c.InputCurrentLimit_mA = uint16(read(FieldInputCurrentLimit))
	if err != nil {
		return Configuration{}, err
	}
	if timer == 0 {
		c.FastChargeTimer = FastChargeTimerOff
	} else {
		c.FastChargeTimer = time.Duration(timer) * time.Second
	}
	return c, nil
}

// ---------------- Status and faults ----------------

// RefreshStatus reads CHG_CNFG_00 and DETAILS_00..02 and derives the
// charge state and fault flags. Any fault disarms the charger until
// AcknowledgeFault. On a bus error the previous status is kept, marked
// stale, and returned with the error.
func (d *Device) RefreshStatus() (Status, error) {
	cnfg, err := d.readReg("refresh_status", regCnfg00)
	if err != nil {
		d.last.Stale = true
		return d.last, err
	}
	var b [3]byte
	if err := d.readBuf("refresh_status", regDetails0, b[:]); err != nil {
		d.last.Stale = true
		return d.last, err
	}
	st := deriveStatus(Mode(Decode(d.field(FieldMode), cnfg)), DecodeDetails(b))
	if st.Faults != 0 {
		d.armed = false
		d.latched |= st.Faults
	}
	d.last = st
	return st, nil
}

// AcknowledgeFault clears the latched charger interrupts, clears the
// watchdog if a watchdog fault was observed, and re-arms Enable. It must
// be called after any fault even when the hardware needs no clear-write.
// If the condition persists, the next RefreshStatus disarms again.
func (d *Device) AcknowledgeFault() error {
	if _, err := d.readReg("acknowledge_fault", regChgInt); err != nil {
		return err
	}
	if d.latched.Has(FaultWatchdogTimeout) {
		if err := d.modifyField("acknowledge_fault", FieldWatchdogClear, wdtClear); err != nil {
			return err
		}
	}
	d.latched = 0
	d.armed = true
	return nil
}

// Armed reports whether Enable is currently permitted.
func (d *Device) Armed() bool { return d.armed }

// LatchedFaults returns every fault observed since the last
// AcknowledgeFault.
func (d *Device) LatchedFaults() FaultFlags { return d.latched }

// LastStatus returns the status from the most recent successful
// RefreshStatus. Before the first one State is StateUnknown and Stale is
// set.
func (d *Device) LastStatus() Status { return d.last }

// Details reads and decodes DETAILS_00..02 without touching the fault
// latch.
func (d *Device) Details() (Details, error) {
	var b [3]byte
	if err := d.readBuf("details", regDetails0, b[:]); err != nil {
		return Details{}, err
	}
	return DecodeDetails(b), nil
}

// ---------------- Write path ----------------

type regWrite struct {
	reg       Reg
	old, val  byte
	protected bool
}

// applyFields validates vals with no bus traffic, then reads, merges and
// commits the affected registers.
func (d *Device) applyFields(op string, vals []fieldValue) error {
	for _, fv := range vals {
		if _, err := Encode(d.field(fv.f), fv.v, 0); err != nil {
			return &errcode.E{C: errcode.InvalidConfiguration, Op: "max7797x." + op, Err: err}
		}
	}
	if len(vals) == 0 {
		return nil
	}

	var buf [8]regWrite
	plan := buf[:0]
	for _, fv := range vals {
		desc := d.field(fv.f)
		i := indexOf(plan, desc.Reg)
		if i < 0 {
			cur, err := d.readReg(op, desc.Reg)
			if err != nil {
				return err
			}
			plan = append(plan, regWrite{reg: desc.Reg, old: cur, val: cur})
			i = len(plan) - 1
		}
		next, _ := Encode(desc, fv.v, plan[i].val)
		plan[i].val = next
		plan[i].protected = plan[i].protected || desc.Protected
	}

	changed := plan[:0]
	for _, w := range plan {
		if w.val != w.old {
			changed = append(changed, w)
		}
	}
	return d.commit(op, changed)
}

func indexOf(plan []regWrite, reg Reg) int {
	for i := range plan {
		if plan[i].reg == reg {
			return i
		}
	}
	return -1
}

// commit writes ws in order. Protected registers are unlocked first and
// relocked after. On failure the registers already written are restored
// in reverse order.
func (d *Device) commit(op string, ws []regWrite) error {
	if len(ws) == 0 {
		return nil
	}
	locked := false
	for _, w := range ws {
		locked = locked || w.protected
	}
	if locked {
		if err := d.writeReg(op, regCnfg06, chgProtUnlock); err != nil {
			return err
		}
	}
	for i, w := range ws {
		if err := d.writeReg(op, w.reg, w.val); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = d.writeReg(op, ws[j].reg, ws[j].old)
			}
			if locked {
				_ = d.writeReg(op, regCnfg06, 0)
			}
			return err
		}
	}
	if locked {
		return d.writeReg(op, regCnfg06, 0)
	}
	return nil
}
