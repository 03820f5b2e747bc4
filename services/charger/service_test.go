package charger

import (
	"context"
	"testing"
	"time"

	"powercode-go/bus"
	"powercode-go/drivers/max14578"
	"powercode-go/drivers/max7797x"
	"powercode-go/types"
	"powercode-go/x/i2csim"
)

// Charger register addresses used to stage the simulator.
const (
	rChipID  = 0x00
	rChgInt  = 0x10
	rDtls0   = 0x13
	rDtls1   = 0x14
	rDtls2   = 0x15
	rCnfg00  = 0x16
	rCnfg02  = 0x18
	rCnfg09  = 0x1F
	dStatus  = 0x02
	chgValid = 0x60
	batReg   = 0x30
	thmNorm  = 0x20
)

type rig struct {
	b    *bus.Bus
	conn *bus.Connection
	chg  *i2csim.Device
	det  *i2csim.Device
	name string
}

func newRig(t *testing.T, p Params) *rig {
	t.Helper()
	sim := i2csim.New()
	chg := sim.Add(max7797x.AddressDefault)
	chg.Set(rChipID, 0x75)
	chg.Set(rCnfg00, byte(max7797x.ModeCharge))
	chg.Set(rCnfg02, 0x0A)
	chg.Set(rCnfg09, 0x09)
	chg.Set(rDtls0, chgValid)
	chg.Set(rDtls1, batReg|byte(max7797x.ChgConstantCurrent))
	chg.Set(rDtls2, thmNorm)
	chg.ClearOnRead(rChgInt, 0xFF)
	det := sim.Add(max14578.AddressDefault)

	b := bus.NewBus(16)
	conn := b.NewConnection("test")
	if p.Name == "" {
		p.Name = "main"
	}
	svc, err := New(sim, b.NewConnection("charger"), p)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ready := conn.Subscribe(Topic(p.Name, tokState))
	defer conn.Unsubscribe(ready)
	svc.Start(ctx)
	waitState(t, ready, "ready")
	return &rig{b: b, conn: conn, chg: chg, det: det, name: p.Name}
}

func waitState(t *testing.T, sub *bus.Subscription, level string) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if st, ok := m.Payload.(types.ServiceState); ok && st.Level == level {
				return
			}
		case <-deadline:
			t.Fatalf("service never reached %q", level)
		}
	}
}

func (r *rig) call(t *testing.T, verb string, payload any) types.Reply {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := r.conn.RequestWait(ctx, r.conn.NewMessage(Topic(r.name, tokCtrl, verb), payload, false))
	if err != nil {
		t.Fatalf("%s: %v", verb, err)
	}
	rep, ok := msg.Payload.(types.Reply)
	if !ok {
		t.Fatalf("%s: reply payload %T", verb, msg.Payload)
	}
	return rep
}

func TestReadPublishesRetainedValue(t *testing.T) {
	r := newRig(t, Params{})
	rep := r.call(t, VerbRead, nil)
	v, ok := rep.Data.(types.ChargerValue)
	if !rep.OK || !ok || v.State != "fast_charge" || !v.Armed {
		t.Fatalf("reply=%+v", rep)
	}

	sub := r.conn.Subscribe(Topic(r.name, tokValue))
	select {
	case m := <-sub.Channel():
		if got := m.Payload.(types.ChargerValue); got.State != "fast_charge" || got.Mode != "charge" {
			t.Fatalf("retained value %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no retained value")
	}
}

func TestFaultGatesEnable(t *testing.T) {
	r := newRig(t, Params{})
	r.chg.Set(rDtls1, batReg|byte(max7797x.ChgHighTemperature))

	rep := r.call(t, VerbRead, nil)
	if v := rep.Data.(types.ChargerValue); v.State != "fault" || v.Armed || len(v.Faults) != 1 || v.Faults[0] != "thermal_shutdown" {
		t.Fatalf("value=%+v", v)
	}
	if rep := r.call(t, VerbEnable, nil); rep.OK || rep.Code != "fault_active" {
		t.Fatalf("enable while faulted: %+v", rep)
	}
	if rep := r.call(t, VerbDisable, nil); !rep.OK {
		t.Fatalf("disable: %+v", rep)
	}
	if rep := r.call(t, VerbAck, nil); !rep.OK {
		t.Fatalf("ack: %+v", rep)
	}
	if rep := r.call(t, VerbEnable, nil); !rep.OK {
		t.Fatalf("enable after ack: %+v", rep)
	}
	if got := max7797x.Mode(r.chg.Get(rCnfg00) & 0x0F); got != max7797x.ModeCharge {
		t.Fatalf("mode=%v", got)
	}
}

func TestAlertEmitsFaultEvent(t *testing.T) {
	r := newRig(t, Params{})
	events := r.conn.Subscribe(Topic(r.name, tokEvent))

	r.chg.Set(rChgInt, byte(max7797x.IntCharger))
	r.chg.Set(rDtls1, batReg|byte(max7797x.ChgWatchdogTimer))
	r.conn.Publish(r.conn.NewMessage(Topic(r.name, tokAlert), true, false))

	deadline := time.After(time.Second)
	for {
		select {
		case m := <-events.Channel():
			ev := m.Payload.(types.ChargerEvent)
			if ev.Kind != "fault" {
				continue
			}
			if len(ev.Faults) != 1 || ev.Faults[0] != "watchdog_timeout" {
				t.Fatalf("event=%+v", ev)
			}
			if r.chg.Get(rChgInt) != 0 {
				t.Fatal("CHG_INT not drained by alert")
			}
			return
		case <-deadline:
			t.Fatal("no fault event")
		}
	}
}

func TestConfigureVerb(t *testing.T) {
	r := newRig(t, Params{})
	if rep := r.call(t, VerbConfigure, map[string]any{"input_current_limit_mA": float64(1500)}); !rep.OK {
		t.Fatalf("configure: %+v", rep)
	}
	if got := r.chg.Get(rCnfg09); got != 29 {
		t.Fatalf("CNFG_09=%d", got)
	}

	r.chg.ResetLog()
	over := uint16(3550)
	rep := r.call(t, VerbConfigure, types.ChargerConfigure{FastChargeCurrent_mA: &over})
	if rep.OK || rep.Code != "invalid_configuration" {
		t.Fatalf("reply=%+v", rep)
	}
	if w := r.chg.Writes(); len(w) != 0 {
		t.Fatalf("writes after rejected configure: %v", w)
	}

	if rep := r.call(t, VerbConfigure, "garbage"); rep.Code != "invalid_payload" {
		t.Fatalf("reply=%+v", rep)
	}
}

func TestApplyPolicyVerb(t *testing.T) {
	r := newRig(t, Params{DetectorAddr: max14578.AddressDefault})
	r.det.Set(dStatus, 0x10|byte(max14578.TypeCDP))

	rep := r.call(t, VerbDetect, nil)
	if d := rep.Data.(types.ChargerDetect); !rep.OK || d.Class != "cdp" || d.Limit_mA != 0 {
		t.Fatalf("detect=%+v", rep)
	}
	if got := r.chg.Get(rCnfg09); got != 0x09 {
		t.Fatalf("detect wrote CNFG_09=%d", got)
	}

	rep = r.call(t, VerbApplyPolicy, nil)
	if d := rep.Data.(types.ChargerDetect); !rep.OK || d.Limit_mA != 1500 {
		t.Fatalf("apply_policy=%+v", rep)
	}
	if got := r.chg.Get(rCnfg09); got != 29 {
		t.Fatalf("CNFG_09=%d", got)
	}
}

func TestDetectWithoutDetector(t *testing.T) {
	r := newRig(t, Params{})
	if rep := r.call(t, VerbDetect, nil); rep.Code != "unsupported" {
		t.Fatalf("reply=%+v", rep)
	}
	if rep := r.call(t, "reboot", nil); rep.Code != "unsupported" {
		t.Fatalf("reply=%+v", rep)
	}
}

func TestPollRefreshes(t *testing.T) {
	r := newRig(t, Params{PollEvery: 10 * time.Millisecond})
	sub := r.conn.Subscribe(Topic(r.name, tokValue))
	r.chg.Set(rDtls1, batReg|byte(max7797x.ChgDone))

	deadline := time.After(time.Second)
	for {
		select {
		case m := <-sub.Channel():
			if m.Payload.(types.ChargerValue).State == "done" {
				return
			}
		case <-deadline:
			t.Fatal("poll never observed done")
		}
	}
}

func TestSetupFailureDegrades(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("test")
	svc, err := New(i2csim.New(), b.NewConnection("charger"), Params{Name: "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := conn.Subscribe(Topic("ghost", tokState))
	svc.Start(ctx)
	waitState(t, sub, "degraded")
}

func TestWatchdogVerbs(t *testing.T) {
	r := newRig(t, Params{})
	if rep := r.call(t, VerbWatchdog, true); !rep.OK {
		t.Fatalf("watchdog on: %+v", rep)
	}
	if got := r.chg.Get(rCnfg00); got&0x10 == 0 {
		t.Fatalf("CNFG_00=%#x, WDTEN not set", got)
	}
	if rep := r.call(t, VerbKick, nil); !rep.OK {
		t.Fatalf("kick: %+v", rep)
	}
	if got := r.chg.Get(0x1C) & 0x03; got != 0x01 {
		t.Fatalf("WDTCLR=%#x", got)
	}
	if rep := r.call(t, VerbWatchdog, "yes"); rep.Code != "invalid_payload" {
		t.Fatalf("reply=%+v", rep)
	}
}
