package conv

// Hex8 writes "0x" and two lowercase hex digits of v into buf and returns
// the used slice. buf should be length >= 4.
func Hex8(buf []byte, v byte) []byte {
	if len(buf) < 4 {
		return buf[:0]
	}
	const hexd = "0123456789abcdef"
	buf[0], buf[1] = '0', 'x'
	buf[2] = hexd[v>>4]
	buf[3] = hexd[v&0xF]
	return buf[:4]
}

// Hex8String is Hex8 into a fresh string, for log lines.
func Hex8String(v byte) string {
	var b [4]byte
	return string(Hex8(b[:], v))
}
