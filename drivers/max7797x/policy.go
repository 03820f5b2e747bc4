package max7797x

import (
	"powercode-go/drivers/max14578"
	"powercode-go/errcode"
)

// Detector classifies the USB source feeding CHGIN.
type Detector interface {
	Detect() (max14578.Result, error)
}

// CurrentPolicy maps a USB source class to an input current limit in mA.
// A zero entry leaves the limit unchanged for that class.
type CurrentPolicy [max14578.Unknown + 1]uint16

// DefaultPolicy follows USB BC1.2: 100 mA unconfigured, 500 mA for a
// standard port, 1.5 A for charging and dedicated ports. Unrecognised
// sources get the standard-port budget.
func DefaultPolicy() CurrentPolicy {
	var p CurrentPolicy
	p[max14578.NoDevice] = 100
	p[max14578.StandardDownstreamPort] = 500
	p[max14578.ChargingDownstreamPort] = 1500
	p[max14578.DedicatedCharger] = 1500
	p[max14578.Unknown] = 500
	return p
}

// For returns the limit for c; out-of-range classes get the Unknown entry.
func (p CurrentPolicy) For(c max14578.Class) uint16 {
	if int(c) >= len(p) {
		c = max14578.Unknown
	}
	return p[c]
}

// Policy returns the current policy table.
func (d *Device) Policy() CurrentPolicy { return d.policy }

// SetPolicy replaces the current policy table.
func (d *Device) SetPolicy(p CurrentPolicy) { d.policy = p }

// Detect queries the attached detector. It never changes charger registers.
func (d *Device) Detect() (max14578.Result, error) {
	if d.det == nil {
		return max14578.Result{}, &errcode.E{C: errcode.Unsupported, Op: "max7797x.detect", Err: ErrNoDetector}
	}
	return d.det.Detect()
}

// ApplyCurrentPolicy writes the policy limit for class c through the
// validated configuration path and returns the limit applied. A zero
// policy entry writes nothing.
func (d *Device) ApplyCurrentPolicy(c max14578.Class) (uint16, error) {
	mA := d.policy.For(c)
	if mA == 0 {
		return 0, nil
	}
	if err := d.ApplyConfiguration(Configuration{InputCurrentLimit_mA: mA}); err != nil {
		return 0, err
	}
	return mA, nil
}

// ApplyDetectedCurrentPolicy runs Detect and applies the policy limit for
// the detected class. While detection is still running nothing is written
// and the error carries errcode.Busy.
func (d *Device) ApplyDetectedCurrentPolicy() (max14578.Result, uint16, error) {
	res, err := d.Detect()
	if err != nil {
		return res, 0, err
	}
	if res.Running {
		return res, 0, &errcode.E{C: errcode.Busy, Op: "max7797x.apply_policy", Msg: "detection running"}
	}
	mA, err := d.ApplyCurrentPolicy(res.Class)
	return res, mA, err
}
