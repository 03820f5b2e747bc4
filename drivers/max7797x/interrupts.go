package max7797x

// ChargerInterrupts is the CHG_INT / CHG_INT_MASK / CHG_INT_OK bit layout.
type ChargerInterrupts uint8

const (
	IntBypass     ChargerInterrupts = 1 << 0
	IntDisQBat    ChargerInterrupts = 1 << 1
	IntBattery    ChargerInterrupts = 1 << 3
	IntCharger    ChargerInterrupts = 1 << 4
	IntInputLimit ChargerInterrupts = 1 << 5
	IntChgIn      ChargerInterrupts = 1 << 6
	IntAICL       ChargerInterrupts = 1 << 7

	IntAll = IntBypass | IntDisQBat | IntBattery | IntCharger | IntInputLimit | IntChgIn | IntAICL
)

func (i ChargerInterrupts) Has(flag ChargerInterrupts) bool { return i&flag != 0 }

// SetInterruptMask unmasks the given sources and masks the rest.
// CHG_INT_MASK uses 1 = masked.
func (d *Device) SetInterruptMask(enabled ChargerInterrupts) error {
	return d.writeReg("set_interrupt_mask", regChgIntMask, ^byte(enabled))
}

// InterruptMask returns the sources currently unmasked.
func (d *Device) InterruptMask() (ChargerInterrupts, error) {
	v, err := d.readReg("interrupt_mask", regChgIntMask)
	return ChargerInterrupts(^v), err
}

// InterruptFlags reads and clears the latched CHG_INT flags.
func (d *Device) InterruptFlags() (ChargerInterrupts, error) {
	v, err := d.readReg("interrupt_flags", regChgInt)
	return ChargerInterrupts(v), err
}

// InterruptStatus reads CHG_INT_OK: a set bit means the matching source
// is in its normal condition.
func (d *Device) InterruptStatus() (ChargerInterrupts, error) {
	v, err := d.readReg("interrupt_status", regChgIntOK)
	return ChargerInterrupts(v), err
}

// DrainInterrupts reads CHG_INT, CHG_INT_MASK and CHG_INT_OK in one
// burst. The CHG_INT flags are cleared by the read.
func (d *Device) DrainInterrupts() (flags, enabled, ok ChargerInterrupts, err error) {
	var b [3]byte
	if err = d.readBuf("drain_interrupts", regChgInt, b[:]); err != nil {
		return 0, 0, 0, err
	}
	return ChargerInterrupts(b[0]), ChargerInterrupts(^b[1]), ChargerInterrupts(b[2]), nil
}
