// Package i2csim is an in-memory I²C bus of byte-register devices.
//
// It satisfies tinygo.org/x/drivers.I2C so drivers can run unmodified on a
// host: the first written byte selects a register, further written bytes
// are stored with auto-increment, and reads return consecutive registers.
// Devices can declare clear-on-read bits and write hooks, and the bus can
// inject failures to exercise error paths.
package i2csim

import (
	"sync"

	"powercode-go/errcode"
)

// Write records one register write seen by a device.
type Write struct {
	Reg byte
	Val byte
}

// Hook runs after a register write, with the bus lock held. It may edit
// regs directly to model device reactions.
type Hook func(regs *[256]byte, reg, val byte)

// Device is one simulated target on the bus.
type Device struct {
	bus *Bus

	regs        [256]byte
	clearOnRead [256]byte
	ptr         byte
	writes      []Write
	reads       int
	hook        Hook
}

// Bus is a set of devices keyed by 7-bit address.
type Bus struct {
	mu   sync.Mutex
	devs map[uint16]*Device

	failAll     error
	failWriteAt int // -1 when disarmed
	failWrite   error
	writeTx     int
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{devs: make(map[uint16]*Device), failWriteAt: -1}
}

// Add attaches a device at addr, replacing any existing one.
func (b *Bus) Add(addr uint16) *Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := &Device{bus: b}
	b.devs[addr] = d
	return d
}

// FailAll makes every transaction fail with err until Heal.
func (b *Bus) FailAll(err error) {
	b.mu.Lock()
	b.failAll = err
	b.mu.Unlock()
}

// FailWrite makes the n-th write transaction from now (0-based) fail once.
func (b *Bus) FailWrite(n int, err error) {
	b.mu.Lock()
	b.writeTx = 0
	b.failWriteAt = n
	b.failWrite = err
	b.mu.Unlock()
}

// Heal clears all injected failures.
func (b *Bus) Heal() {
	b.mu.Lock()
	b.failAll = nil
	b.failWriteAt = -1
	b.failWrite = nil
	b.mu.Unlock()
}

// Tx implements drivers.I2C.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failAll != nil {
		return b.failAll
	}
	d, ok := b.devs[addr]
	if !ok {
		return errcode.NoAck
	}
	if len(w) > 1 {
		n := b.writeTx
		b.writeTx++
		if n == b.failWriteAt {
			b.failWriteAt = -1
			return b.failWrite
		}
	}

	if len(w) > 0 {
		d.ptr = w[0]
		for _, v := range w[1:] {
			reg := d.ptr
			d.regs[reg] = v
			d.writes = append(d.writes, Write{Reg: reg, Val: v})
			if d.hook != nil {
				d.hook(&d.regs, reg, v)
			}
			d.ptr++
		}
	}
	for i := range r {
		reg := d.ptr
		r[i] = d.regs[reg]
		d.regs[reg] &^= d.clearOnRead[reg]
		d.ptr++
	}
	if len(r) > 0 {
		d.reads++
	}
	return nil
}

// Set stores val at reg without logging a write.
func (d *Device) Set(reg, val byte) {
	d.bus.mu.Lock()
	d.regs[reg] = val
	d.bus.mu.Unlock()
}

// Get returns the current value at reg.
func (d *Device) Get(reg byte) byte {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()
	return d.regs[reg]
}

// ClearOnRead marks bits of reg that the device clears after each read.
func (d *Device) ClearOnRead(reg, mask byte) {
	d.bus.mu.Lock()
	d.clearOnRead[reg] = mask
	d.bus.mu.Unlock()
}

// OnWrite installs a hook run after every register write.
func (d *Device) OnWrite(h Hook) {
	d.bus.mu.Lock()
	d.hook = h
	d.bus.mu.Unlock()
}

// Writes returns a copy of the write log.
func (d *Device) Writes() []Write {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()
	out := make([]Write, len(d.writes))
	copy(out, d.writes)
	return out
}

// WritesTo returns the values written to reg, oldest first.
func (d *Device) WritesTo(reg byte) []byte {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()
	var out []byte
	for _, w := range d.writes {
		if w.Reg == reg {
			out = append(out, w.Val)
		}
	}
	return out
}

// Reads returns the number of read transactions served.
func (d *Device) Reads() int {
	d.bus.mu.Lock()
	defer d.bus.mu.Unlock()
	return d.reads
}

// ResetLog clears the write log and read counter.
func (d *Device) ResetLog() {
	d.bus.mu.Lock()
	d.writes = nil
	d.reads = 0
	d.bus.mu.Unlock()
}
