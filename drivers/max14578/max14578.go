// Package max14578 provides a minimal TinyGo driver for the MAX14578AE USB
// charger-type detector.
//
// Only the BC1.2 detection path is covered: the driver reads the STATUS
// register and classifies the attached source. Switch and accessory
// control are left at their reset defaults.
package max14578

import (
	"powercode-go/errcode"

	"tinygo.org/x/drivers"
)

// ChargerType is the raw STATUS.CHGTYP code.
type ChargerType uint8

const (
	TypeNone       ChargerType = 0
	TypeSDP        ChargerType = 1 // USB standard downstream port
	TypeCDP        ChargerType = 2 // USB charging downstream port
	TypeDCP        ChargerType = 3 // dedicated charger, D+/D- shorted
	TypeApple500mA ChargerType = 4
	TypeApple1A    ChargerType = 5
	TypeApple2A    ChargerType = 6
	TypeSpecial    ChargerType = 7
)

func (t ChargerType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeSDP:
		return "sdp"
	case TypeCDP:
		return "cdp"
	case TypeDCP:
		return "dcp"
	case TypeApple500mA:
		return "apple_500mA"
	case TypeApple1A:
		return "apple_1A"
	case TypeApple2A:
		return "apple_2A"
	default:
		return "special"
	}
}

// Class is the USB source classification used for current policy.
type Class uint8

const (
	NoDevice Class = iota
	StandardDownstreamPort
	ChargingDownstreamPort
	DedicatedCharger
	Unknown
)

func (c Class) String() string {
	switch c {
	case NoDevice:
		return "no_device"
	case StandardDownstreamPort:
		return "sdp"
	case ChargingDownstreamPort:
		return "cdp"
	case DedicatedCharger:
		return "dcp"
	default:
		return "unknown"
	}
}

// Result is one decoded STATUS read.
type Result struct {
	Class      Class
	Type       ChargerType
	VBusValid  bool
	Running    bool // detection still in progress
	DCDTimeout bool // data contact detect timed out
	Raw        byte
}

// DecodeStatus classifies a raw STATUS byte. Every pattern maps to a Class:
// no VBUS is NoDevice, a running detection or a non-BC1.2 type is Unknown.
func DecodeStatus(raw byte) Result {
	r := Result{
		Type:       ChargerType(raw & statusChgTypMask),
		VBusValid:  raw&statusVBVolt != 0,
		Running:    raw&statusChgDetRun != 0,
		DCDTimeout: raw&statusDCDTimedOut != 0,
		Raw:        raw,
	}
	switch {
	case !r.VBusValid:
		r.Class = NoDevice
	case r.Running:
		r.Class = Unknown
	default:
		switch r.Type {
		case TypeSDP:
			r.Class = StandardDownstreamPort
		case TypeCDP:
			r.Class = ChargingDownstreamPort
		case TypeDCP:
			r.Class = DedicatedCharger
		default:
			r.Class = Unknown
		}
	}
	return r
}

// Interrupts is the INTERRUPT/INTMASK bit set.
type Interrupts uint8

const (
	IntChgTyp    Interrupts = 1 << 0
	IntVBVolt    Interrupts = 1 << 1
	IntChgDetRun Interrupts = 1 << 2
	IntDCDTmr    Interrupts = 1 << 3
)

func (i Interrupts) Has(flag Interrupts) bool { return i&flag != 0 }

// Config holds wiring for one detector.
type Config struct {
	Address uint16 // defaults to AddressDefault
}

// Device is a MAX14578AE on an I²C bus. It is not safe for concurrent use.
type Device struct {
	i2c  drivers.I2C
	addr uint16

	w [2]byte
	r [1]byte
}

// New constructs a Device. It does not touch the bus.
func New(i2c drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{i2c: i2c, addr: addr}
}

// Address returns the 7-bit bus address in use.
func (d *Device) Address() uint16 { return d.addr }

// DeviceID returns the DEVICE_ID register.
func (d *Device) DeviceID() (byte, error) {
	return d.readReg("device_id", regDeviceID)
}

// Detect reads STATUS and classifies the attached USB source.
func (d *Device) Detect() (Result, error) {
	v, err := d.readReg("detect", regStatus)
	if err != nil {
		return Result{}, err
	}
	return DecodeStatus(v), nil
}

// Rerun requests a manual charger-detection cycle. Poll Detect until
// Running clears.
func (d *Device) Rerun() error {
	v, err := d.readReg("rerun", regControl2)
	if err != nil {
		return err
	}
	return d.writeReg("rerun", regControl2, v|ctl2ChgDetEn|ctl2ChgDetMan)
}

// Interrupts reads and clears the latched interrupt flags.
func (d *Device) Interrupts() (Interrupts, error) {
	v, err := d.readReg("interrupts", regInterrupt)
	return Interrupts(v), err
}

// SetInterruptMask enables the given interrupt sources and disables the rest.
func (d *Device) SetInterruptMask(enabled Interrupts) error {
	return d.writeReg("set_interrupt_mask", regIntMask, byte(enabled))
}

func (d *Device) readReg(op string, reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, busErr(op, err)
	}
	return d.r[0], nil
}

func (d *Device) writeReg(op string, reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	if err := d.i2c.Tx(d.addr, d.w[:2], nil); err != nil {
		return busErr(op, err)
	}
	return nil
}

func busErr(op string, err error) error {
	c := errcode.BusError
	if errcode.MapDriverErr(err) == errcode.NoAck {
		c = errcode.NoAck
	}
	return &errcode.E{C: c, Op: "max14578." + op, Err: err}
}
