package max7797x

import (
	"powercode-go/errcode"
	"powercode-go/x/mathx"
)

// Encode validates value against d and merges its code into current,
// leaving bits outside the field untouched. Linear values between grid
// points are floored to the grid; values outside the domain are rejected.
func Encode(d Descriptor, value uint32, current byte) (byte, error) {
	code, err := d.code(value)
	if err != nil {
		return current, err
	}
	m := d.Mask()
	return (current &^ m) | ((code << d.Shift) & m), nil
}

// Decode extracts the field from raw. It is total: linear codes outside
// CodeMin..CodeMax saturate to the nearest bound, raw codes are returned
// as-is.
func Decode(d Descriptor, raw byte) uint32 {
	code := (raw & d.Mask()) >> d.Shift
	switch d.Kind {
	case KindLinear:
		code = mathx.Clamp(code, d.CodeMin, d.CodeMax)
		return mathx.StepValue(uint32(code), d.Base, d.Step)
	case KindTable:
		if int(code) < len(d.Table) {
			return d.Table[code]
		}
		return d.Table[len(d.Table)-1]
	default:
		return uint32(code)
	}
}

func (d Descriptor) code(value uint32) (byte, error) {
	switch d.Kind {
	case KindLinear:
		if !mathx.Between(value, d.Min(), d.Max()) {
			return 0, outOfRange(d)
		}
		return byte(mathx.StepIndex(value, d.Base, d.Step)), nil
	case KindTable:
		for i, v := range d.Table {
			if v == value {
				return byte(i), nil
			}
		}
		return 0, outOfRange(d)
	default:
		if !mathx.Between(value, uint32(d.CodeMin), uint32(d.CodeMax)) {
			return 0, outOfRange(d)
		}
		if d.Codes != nil {
			for _, c := range d.Codes {
				if uint32(c) == value {
					return c, nil
				}
			}
			return 0, outOfRange(d)
		}
		return byte(value), nil
	}
}

func outOfRange(d Descriptor) error {
	return &errcode.E{C: errcode.OutOfRange, Op: "encode", Msg: d.Field.String()}
}
