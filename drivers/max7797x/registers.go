// Package max7797x provides register addresses and bitfields used in the
// operation of the MAX77975/MAX77976 1-cell Li+ battery charger.
package max7797x

// Reg is an 8-bit register sub-address.
type Reg byte

const (
	// 7-bit I2C address.
	AddressDefault = 0x6B

	// --- Top level ---
	regChipID       Reg = 0x00 // R
	regChipRevision Reg = 0x01 // R
	regOTPRevision  Reg = 0x02 // R
	regTopInt       Reg = 0x03 // R/Clear-on-read
	regTopIntMask   Reg = 0x04 // R/W
	regTopControl   Reg = 0x05 // R/W
	regI2CConfig    Reg = 0x40 // R/W
	regSoftReset    Reg = 0x50 // W
	regShipControl  Reg = 0x51 // W

	// --- Charger interrupts ---
	regChgInt     Reg = 0x10 // R/Clear-on-read
	regChgIntMask Reg = 0x11 // R/W (1 = masked)
	regChgIntOK   Reg = 0x12 // R (live status)

	// --- Charger details (live status) ---
	regDetails0 Reg = 0x13 // SPSN_DTLS 2:1, CHGIN_DTLS 6:5
	regDetails1 Reg = 0x14 // CHG_DTLS 3:0, BAT_DTLS 6:4, TREG 7
	regDetails2 Reg = 0x15 // BYP_DTLS 3:0, THM_DTLS 6:4

	// --- Charger configuration ---
	regCnfg00 Reg = 0x16 // MODE 3:0, WDTEN 4
	regCnfg01 Reg = 0x17 // FCHGTIME 2:0 (protected)
	regCnfg02 Reg = 0x18 // CHG_CC 6:0 (protected)
	regCnfg03 Reg = 0x19 // TO_ITH 2:0, TO_TIME 5:3 (protected)
	regCnfg04 Reg = 0x1A // CHG_CV_PRM 5:0, MINVSYS 7:6 (protected)
	regCnfg05 Reg = 0x1B // B2SOVRC 3:0, B2SOVRC_REC 4 (protected)
	regCnfg06 Reg = 0x1C // WDTCLR 1:0, CHGPROT 3:2
	regCnfg07 Reg = 0x1D
	regCnfg08 Reg = 0x1E
	regCnfg09 Reg = 0x1F // CHGIN_ILIM 5:0
	regCnfg10 Reg = 0x20
	regCnfg11 Reg = 0x21
	regCnfg12 Reg = 0x22
	regCnfg13 Reg = 0x23
	regStatLED Reg = 0x24

	// CHG_CNFG_06 values.
	chgProtUnlock = 0x0C // CHGPROT = 11
	wdtClear      = 0x01 // WDTCLR = 01

	// SHIP_CTRL value that enters ship mode.
	shipModeEnter = 0x01

	// CHIP_ID values.
	chipIDMAX77975 = 0x75
	chipIDMAX77976 = 0x76
)

// Mode is the CHG_CNFG_00.MODE field.
type Mode uint8

const (
	// Charger, OTG, buck and boost off; battery supports the system.
	ModeOff Mode = 0x0
	// Buck on, charger off: input powers the system only.
	ModeBuck Mode = 0x4
	// Buck and charger on.
	ModeCharge Mode = 0x5
	// Boost on, BYP regulated to VBYPSET, CHGIN switch off.
	ModeBoost Mode = 0x9
	// Boost and OTG on: CHGIN sources current.
	ModeOTG Mode = 0xA
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeBuck:
		return "buck"
	case ModeCharge:
		return "charge"
	case ModeBoost:
		return "boost"
	case ModeOTG:
		return "otg"
	default:
		return "reserved"
	}
}

// Charging reports whether the mode has the charger switched on.
func (m Mode) Charging() bool { return m == ModeCharge }
