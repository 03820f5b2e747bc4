package main

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// currentFlag is a physic.ElectricCurrent usable as a pflag.Value, so
// "1.5A" and "500mA" are both accepted.
type currentFlag struct{ physic.ElectricCurrent }

func (*currentFlag) Type() string { return "current" }

// milli returns the value in whole milliamperes.
func (c currentFlag) milli(name string) (uint16, error) {
	return toMilli(name, int64(c.ElectricCurrent), int64(physic.MilliAmpere))
}

type potentialFlag struct{ physic.ElectricPotential }

func (*potentialFlag) Type() string { return "voltage" }

func (p potentialFlag) milli(name string) (uint16, error) {
	return toMilli(name, int64(p.ElectricPotential), int64(physic.MilliVolt))
}

func toMilli(name string, v, unit int64) (uint16, error) {
	if v <= 0 {
		return 0, fmt.Errorf("--%s must be positive", name)
	}
	if v%unit != 0 {
		return 0, fmt.Errorf("--%s must be a whole number of milli-units", name)
	}
	n := v / unit
	if n > 0xFFFF {
		return 0, fmt.Errorf("--%s too large", name)
	}
	return uint16(n), nil
}
