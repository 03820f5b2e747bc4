package i2cbus

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"powercode-go/errcode"
	"powercode-go/x/i2csim"
)

// slowBus records the peak number of concurrent Tx calls.
type slowBus struct {
	delay     time.Duration
	err       error
	cur, peak atomic.Int32
	calls     atomic.Int32
}

func (b *slowBus) Tx(addr uint16, w, r []byte) error {
	n := b.cur.Add(1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	b.calls.Add(1)
	time.Sleep(b.delay)
	b.cur.Add(-1)
	return b.err
}

func TestSerialisesConcurrentCallers(t *testing.T) {
	hw := &slowBus{delay: time.Millisecond}
	o := New(hw, 4)
	defer o.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(addr uint16) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				var r [1]byte
				if err := o.Tx(addr, []byte{0x00}, r[:]); err != nil {
					t.Error(err)
				}
			}
		}(uint16(0x60 + i))
	}
	wg.Wait()
	if p := hw.peak.Load(); p != 1 {
		t.Fatalf("peak concurrent Tx = %d", p)
	}
	if n := hw.calls.Load(); n != 40 {
		t.Fatalf("calls = %d", n)
	}
}

func TestPassesDataThrough(t *testing.T) {
	sim := i2csim.New()
	d := sim.Add(0x6b)
	d.Set(0x00, 0x75)
	o := New(sim, 0)
	defer o.Stop()

	var r [1]byte
	if err := o.WithTimeout(time.Second).Tx(0x6b, []byte{0x00}, r[:]); err != nil || r[0] != 0x75 {
		t.Fatalf("r=%#x err=%v", r[0], err)
	}
	if err := o.Tx(0x6b, []byte{0x16, 0x05}, nil); err != nil || d.Get(0x16) != 0x05 {
		t.Fatalf("write err=%v", err)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want errcode.Code
	}{
		{"enxio", errors.New("sysfs-i2c: no such device or address"), errcode.NoAck},
		{"eremoteio", errors.New("sysfs-i2c: remote I/O error"), errcode.NoAck},
		{"other", errors.New("i2c: arbitration lost"), errcode.BusError},
	}
	for _, tc := range cases {
		o := New(&slowBus{err: tc.err}, 0)
		err := o.Tx(0x6b, []byte{0x00}, nil)
		o.Stop()
		if got := errcode.Of(err); got != tc.want {
			t.Errorf("%s: code %q want %q", tc.name, got, tc.want)
		}
		if !errors.Is(err, tc.err) {
			t.Errorf("%s: cause lost: %v", tc.name, err)
		}
	}

	// A simulator miss already carries no_ack.
	o := New(i2csim.New(), 0)
	defer o.Stop()
	if err := o.Tx(0x10, []byte{0x00}, nil); !errors.Is(err, errcode.NoAck) {
		t.Fatalf("err=%v", err)
	}
}

func TestTimeout(t *testing.T) {
	o := New(&slowBus{delay: 50 * time.Millisecond}, 0)
	defer o.Stop()
	r := []byte{0xAA}
	err := o.WithTimeout(5 * time.Millisecond).Tx(0x6b, []byte{0x00}, r)
	if !errors.Is(err, errcode.Timeout) {
		t.Fatalf("err=%v", err)
	}
	if r[0] != 0xAA {
		t.Fatal("caller buffer touched after timeout")
	}
}

func TestStopped(t *testing.T) {
	o := New(&slowBus{}, 0)
	o.Stop()
	o.Stop()
	if err := o.Tx(0x6b, []byte{0x00}, nil); !errors.Is(err, errcode.Unavailable) {
		t.Fatalf("err=%v", err)
	}
}
