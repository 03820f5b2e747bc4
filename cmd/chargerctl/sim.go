package main

import (
	"powercode-go/drivers/max14578"
	"powercode-go/drivers/max7797x"
	"powercode-go/x/i2csim"
)

// Simulated register map, reset values of a MAX77975 on a DCP with a
// healthy battery.
const (
	simChipID   = 0x00
	simChgInt   = 0x10
	simDetails0 = 0x13
	simDetails1 = 0x14
	simDetails2 = 0x15
	simCnfg00   = 0x16
	simCnfg06   = 0x1C

	simDetStatus = 0x02
)

var simReset = map[byte]byte{
	simChipID:   0x75,
	0x01:        0x01, // chip revision
	0x11:        0xFF, // all CHG_INT sources masked
	0x12:        0x40, // CHGIN ok
	simDetails0: 0x60, // CHGIN valid
	simDetails1: 0x30 | byte(max7797x.ChgOff),
	simDetails2: 0x20, // thermistor normal
	simCnfg00:   byte(max7797x.ModeBuck),
	0x17:        0x02, // 4 h
	0x18:        0x8A, // 500 mA
	0x19:        0x18, // 150 mA, 30 min
	0x1A:        0x94, // 4200 mV, 3600 mV
	0x1B:        0x07, // 6000 mA
	0x1F:        0x09, // 500 mA
}

func newSimBus() *i2csim.Bus {
	b := i2csim.New()
	chg := b.Add(max7797x.AddressDefault)
	for reg, v := range simReset {
		chg.Set(reg, v)
	}
	chg.ClearOnRead(simChgInt, 0xFF)
	chg.OnWrite(simChargerWrite)

	det := b.Add(max14578.AddressDefault)
	det.Set(simDetStatus, 0x10|0x03) // VBUS valid, DCP
	return b
}

// simChargerWrite mirrors MODE into CHG_DTLS and self-clears WDTCLR.
func simChargerWrite(regs *[256]byte, reg, val byte) {
	switch reg {
	case simCnfg00:
		chg := max7797x.ChgOff
		if max7797x.Mode(val&0x0F).Charging() {
			chg = max7797x.ChgConstantCurrent
		}
		regs[simDetails1] = regs[simDetails1]&0xF0 | byte(chg)
	case simCnfg06:
		regs[simCnfg06] = val &^ 0x03
	}
}
