package max7797x

// RegValue is one register as read by DumpRegisters.
type RegValue struct {
	Reg  Reg
	Name string
	Val  byte
}

// Clear-on-read registers are left out so a dump never loses interrupts.
var dumpRegs = [...]struct {
	r    Reg
	name string
}{
	{regChipID, "CHIP_ID"},
	{regChipRevision, "CHIP_REVISION"},
	{regOTPRevision, "OTP_REVISION"},
	{regTopIntMask, "TOP_INT_MASK"},
	{regTopControl, "TOP_CTRL"},
	{regChgIntMask, "CHG_INT_MASK"},
	{regChgIntOK, "CHG_INT_OK"},
	{regDetails0, "CHG_DETAILS_00"},
	{regDetails1, "CHG_DETAILS_01"},
	{regDetails2, "CHG_DETAILS_02"},
	{regCnfg00, "CHG_CNFG_00"},
	{regCnfg01, "CHG_CNFG_01"},
	{regCnfg02, "CHG_CNFG_02"},
	{regCnfg03, "CHG_CNFG_03"},
	{regCnfg04, "CHG_CNFG_04"},
	{regCnfg05, "CHG_CNFG_05"},
	{regCnfg06, "CHG_CNFG_06"},
	{regCnfg07, "CHG_CNFG_07"},
	{regCnfg08, "CHG_CNFG_08"},
	{regCnfg09, "CHG_CNFG_09"},
	{regCnfg10, "CHG_CNFG_10"},
	{regCnfg11, "CHG_CNFG_11"},
	{regCnfg12, "CHG_CNFG_12"},
	{regCnfg13, "CHG_CNFG_13"},
	{regStatLED, "STAT_CNFG"},
}

// DumpRegisters reads every readable register that has no read side
// effect. It stops at the first bus error and returns what it has.
func (d *Device) DumpRegisters() ([]RegValue, error) {
	out := make([]RegValue, 0, len(dumpRegs))
	for _, e := range dumpRegs {
		v, err := d.readReg("dump_registers", e.r)
		if err != nil {
			return out, err
		}
		out = append(out, RegValue{Reg: e.r, Name: e.name, Val: v})
	}
	return out, nil
}
