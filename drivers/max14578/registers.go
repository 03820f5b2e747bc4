package max14578

const (
	// 7-bit I2C address.
	AddressDefault = 0x35

	regDeviceID  = 0x00 // R
	regInterrupt = 0x01 // R/Clear-on-read
	regStatus    = 0x02 // R
	regControl1  = 0x03 // R/W
	regControl2  = 0x04 // R/W
	regIntMask   = 0x05 // R/W (1 = enabled)

	// STATUS bits.
	statusChgTypMask  = 0x07
	statusChgDetRun   = 1 << 3
	statusVBVolt      = 1 << 4
	statusDCDTimedOut = 1 << 5

	// CONTROL2 bits.
	ctl2ChgDetEn  = 1 << 0
	ctl2ChgDetMan = 1 << 1
)
