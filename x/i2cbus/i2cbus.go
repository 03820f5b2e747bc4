// Package i2cbus gives one physical I²C bus a single owner goroutine. Every
// Tx from every driver is queued to that worker, so no two transactions are
// ever in flight on the bus.
package i2cbus

import (
	"sync"
	"time"

	"powercode-go/errcode"

	"tinygo.org/x/drivers"
)

// request posted to the worker
type request struct {
	addr uint16
	w, r []byte
	done chan error // buffered(1); worker replies best-effort
}

// Owner hosts the worker for one bus.
type Owner struct {
	hw   drivers.I2C
	reqs chan request
	quit chan struct{}
	once sync.Once
}

// New starts the worker for hw. depth bounds the request queue; zero picks
// a default.
func New(hw drivers.I2C, depth int) *Owner {
	if depth <= 0 {
		depth = 16
	}
	o := &Owner{
		hw:   hw,
		reqs: make(chan request, depth),
		quit: make(chan struct{}),
	}
	go o.loop()
	return o
}

func (o *Owner) loop() {
	for {
		select {
		case req := <-o.reqs:
			err := o.hw.Tx(req.addr, req.w, req.r)
			if err != nil {
				err = errcode.Wrap(errcode.MapDriverErr(err), "i2c.tx", err)
			}
			select {
			case req.done <- err:
			default:
			}
		case <-o.quit:
			return
		}
	}
}

// Stop ends the worker. Later Tx calls fail with errcode.Unavailable.
func (o *Owner) Stop() { o.once.Do(func() { close(o.quit) }) }

// Tx queues a transaction and waits for it without a deadline.
func (o *Owner) Tx(addr uint16, w, r []byte) error {
	return o.tx(addr, w, r, 0)
}

// WithTimeout returns a drivers.I2C whose calls give up after d: a full
// queue reports errcode.Busy, a late completion errcode.Timeout.
func (o *Owner) WithTimeout(d time.Duration) drivers.I2C {
	return timed{o: o, d: d}
}

type timed struct {
	o *Owner
	d time.Duration
}

func (t timed) Tx(addr uint16, w, r []byte) error { return t.o.tx(addr, w, r, t.d) }

var (
	_ drivers.I2C = (*Owner)(nil)
	_ drivers.I2C = timed{}
)

func (o *Owner) tx(addr uint16, w, r []byte, timeout time.Duration) error {
	req := request{addr: addr, w: w, r: r, done: make(chan error, 1)}
	if timeout <= 0 {
		select {
		case o.reqs <- req:
		case <-o.quit:
			return errcode.Unavailable
		}
		select {
		case err := <-req.done:
			return err
		case <-o.quit:
			return errcode.Unavailable
		}
	}

	// The worker may still run a request the caller gave up on, so it gets
	// private buffers and the result is copied back only on completion.
	req.w = append([]byte(nil), w...)
	if len(r) > 0 {
		req.r = make([]byte, len(r))
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case o.reqs <- req:
	case <-t.C:
		return errcode.Busy
	case <-o.quit:
		return errcode.Unavailable
	}
	select {
	case err := <-req.done:
		copy(r, req.r)
		return err
	case <-t.C:
		return errcode.Timeout
	case <-o.quit:
		return errcode.Unavailable
	}
}
