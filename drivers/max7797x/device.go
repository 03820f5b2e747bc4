package max7797x

import (
	"errors"

	"powercode-go/drivers/max14578"
	"powercode-go/errcode"
	"powercode-go/x/conv"

	"tinygo.org/x/drivers"
)

var (
	ErrNoDetector = errors.New("max7797x: no detector attached")
	ErrNotArmed   = errors.New("max7797x: unacknowledged fault")
)

// Config holds wiring and policy for one charger.
type Config struct {
	Address uint16  // defaults to AddressDefault
	Variant Variant // VariantUnknown uses the MAX77975 ranges
	Policy  CurrentPolicy
}

// DefaultConfig returns a MAX77975 at the default address with the
// default current policy.
func DefaultConfig() Config {
	return Config{Address: AddressDefault, Variant: MAX77975, Policy: DefaultPolicy()}
}

// Validate checks the address and that every policy entry is encodable as
// an input current limit.
func (c Config) Validate() error {
	if c.Address > 0x7F {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "address"}
	}
	d, _ := Lookup(c.Variant, FieldInputCurrentLimit)
	for cl, mA := range c.Policy {
		if mA == 0 {
			continue
		}
		if _, err := Encode(d, uint32(mA), 0); err != nil {
			return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "policy " + max14578.Class(cl).String(), Err: err}
		}
	}
	return nil
}

// Device is a MAX77975/MAX77976 on an I²C bus.
//
// A Device owns its transport exclusively and is not safe for concurrent
// use; hand it to a single goroutine.
type Device struct {
	i2c     drivers.I2C
	addr    uint16
	variant Variant
	policy  CurrentPolicy
	det     Detector

	armed   bool
	latched FaultFlags
	last    Status

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [1]byte
}

// New constructs a Device. It does not touch the bus. A new Device is
// armed: there is no fault to acknowledge until one is observed.
func New(i2c drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	pol := cfg.Policy
	if pol == (CurrentPolicy{}) {
		pol = DefaultPolicy()
	}
	return &Device{
		i2c:     i2c,
		addr:    addr,
		variant: cfg.Variant,
		policy:  pol,
		armed:   true,
		last:    Status{State: StateUnknown, Stale: true},
	}
}

// AttachDetector sets the USB source detector consulted by Detect and
// ApplyDetectedCurrentPolicy. A nil detector detaches.
func (d *Device) AttachDetector(det Detector) { d.det = det }

func (d *Device) Address() uint16  { return d.addr }
func (d *Device) Variant() Variant { return d.variant }

// Probe reads CHIP_ID and checks it against the configured variant. An
// unknown variant is resolved from the chip.
func (d *Device) Probe() (Variant, error) {
	id, err := d.readReg("probe", regChipID)
	if err != nil {
		return VariantUnknown, err
	}
	var got Variant
	switch id {
	case chipIDMAX77975:
		got = MAX77975
	case chipIDMAX77976:
		got = MAX77976
	default:
		return VariantUnknown, &errcode.E{C: errcode.UnknownChip, Op: "max7797x.probe", Msg: "chip id " + conv.Hex8String(id)}
	}
	if d.variant == VariantUnknown {
		d.variant = got
	} else if d.variant != got {
		return got, &errcode.E{C: errcode.UnknownChip, Op: "max7797x.probe", Msg: "found " + got.String() + ", configured " + d.variant.String()}
	}
	return got, nil
}

// Revision returns CHIP_REVISION and OTP_REVISION.
func (d *Device) Revision() (chip, otp byte, err error) {
	if chip, err = d.readReg("revision", regChipRevision); err != nil {
		return 0, 0, err
	}
	otp, err = d.readReg("revision", regOTPRevision)
	return chip, otp, err
}

// ---------------- Register helpers ----------------

func (d *Device) field(f Field) Descriptor {
	desc, _ := Lookup(d.variant, f)
	return desc
}

func (d *Device) readReg(op string, reg Reg) (byte, error) {
	d.w[0] = byte(reg)
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, busErr(op, err)
	}
	return d.r[0], nil
}

func (d *Device) readBuf(op string, reg Reg, buf []byte) error {
	d.w[0] = byte(reg)
	if err := d.i2c.Tx(d.addr, d.w[:1], buf); err != nil {
		return busErr(op, err)
	}
	return nil
}

// writeReg marks the last status stale on failure: a write that may or may
// not have landed leaves the register state unknown.
func (d *Device) writeReg(op string, reg Reg, val byte) error {
	d.w[0] = byte(reg)
	d.w[1] = val
	if err := d.i2c.Tx(d.addr, d.w[:2], nil); err != nil {
		d.last.Stale = true
		return busErr(op, err)
	}
	return nil
}

// modifyField is the read-modify-write path for a single field.
func (d *Device) modifyField(op string, f Field, value uint32) error {
	desc := d.field(f)
	cur, err := d.readReg(op, desc.Reg)
	if err != nil {
		return err
	}
	next, err := Encode(desc, value, cur)
	if err != nil {
		return &errcode.E{C: errcode.InvalidConfiguration, Op: "max7797x." + op, Err: err}
	}
	return d.commit(op, []regWrite{{reg: desc.Reg, old: cur, val: next, protected: desc.Protected}})
}

func (d *Device) readField(op string, f Field) (uint32, error) {
	desc := d.field(f)
	v, err := d.readReg(op, desc.Reg)
	if err != nil {
		return 0, err
	}
	return Decode(desc, v), nil
}

func busErr(op string, err error) error {
	c := errcode.BusError
	if errcode.MapDriverErr(err) == errcode.NoAck {
		c = errcode.NoAck
	}
	return &errcode.E{C: c, Op: "max7797x." + op, Err: err}
}
