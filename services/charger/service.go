// Package charger runs one MAX7797x charger as a bus service.
//
// The service goroutine is the sole owner of the driver: control verbs,
// alert notifications and the optional poll tick are all handled in one
// select loop, so register transactions never overlap.
//
// Topics (prefix charger/<name>):
//
//	value         retained types.ChargerValue
//	state         retained types.ServiceState
//	info          retained types.ChargerInfo
//	event         types.ChargerEvent on state or fault change
//	alert         any payload: drain CHG_INT and refresh
//	ctrl/<verb>   request; types.Reply on ReplyTo
//
// Verbs: read, enable, disable, configure, ack, detect, apply_policy,
// watchdog (bool payload) and kick.
package charger

import (
	"context"
	"time"

	"powercode-go/bus"
	"powercode-go/drivers/max14578"
	"powercode-go/drivers/max7797x"
	"powercode-go/errcode"
	"powercode-go/types"
	"powercode-go/x/conv"
	"powercode-go/x/timex"

	"tinygo.org/x/drivers"
)

const (
	tokCharger = "charger"
	tokCtrl    = "ctrl"
	tokAlert   = "alert"
	tokValue   = "value"
	tokState   = "state"
	tokInfo    = "info"
	tokEvent   = "event"

	VerbRead        = "read"
	VerbEnable      = "enable"
	VerbDisable     = "disable"
	VerbConfigure   = "configure"
	VerbAck         = "ack"
	VerbDetect      = "detect"
	VerbApplyPolicy = "apply_policy"
	VerbWatchdog    = "watchdog"
	VerbKick        = "kick"
)

// Topic returns charger/<name>/<leaf...>.
func Topic(name string, leaf ...any) bus.Topic {
	return bus.T(tokCharger, name).Append(leaf...)
}

type Service struct {
	p    Params
	conn *bus.Connection
	dev  *max7797x.Device

	// Last published state, for change events.
	pubState  max7797x.ChargeState
	pubFaults max7797x.FaultFlags
	published bool
}

// New validates p and constructs the driver on i2c. No bus traffic happens
// until Run.
func New(i2c drivers.I2C, conn *bus.Connection, p Params) (*Service, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	pol := max7797x.DefaultPolicy()
	for i, mA := range p.Policy {
		if mA != 0 {
			pol[i] = mA
		}
	}
	cfg := max7797x.Config{Address: p.Addr, Variant: p.Variant, Policy: pol}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dev := max7797x.New(i2c, cfg)
	if p.DetectorAddr != 0 {
		dev.AttachDetector(max14578.New(i2c, max14578.Config{Address: p.DetectorAddr}))
	}
	return &Service{p: p, conn: conn, dev: dev}, nil
}

// Start runs the service in its own goroutine.
func (s *Service) Start(ctx context.Context) {
	go s.Run(ctx)
}

// Run blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	ctrl := s.conn.Subscribe(Topic(s.p.Name, tokCtrl, bus.Single))
	defer s.conn.Unsubscribe(ctrl)
	alert := s.conn.Subscribe(Topic(s.p.Name, tokAlert))
	defer s.conn.Unsubscribe(alert)

	s.publishState("idle", "starting")
	if err := s.setup(); err != nil {
		s.logErr("setup", err)
		s.publishState("degraded", string(errcode.Of(err)))
	} else {
		s.publishState("ready", "ok")
	}
	s.refresh()

	var tick <-chan time.Time
	if s.p.PollEvery > 0 {
		t := time.NewTicker(s.p.PollEvery)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			s.publishState("stopped", "ctx_done")
			return
		case m, ok := <-ctrl.Channel():
			if !ok {
				return
			}
			s.handle(m)
		case _, ok := <-alert.Channel():
			if !ok {
				return
			}
			s.onAlert()
		case <-tick:
			s.refresh()
		}
	}
}

// setup probes the chip, publishes info and applies the initial
// configuration and interrupt mask.
func (s *Service) setup() error {
	v, err := s.dev.Probe()
	if err != nil {
		return err
	}
	info := types.ChargerInfo{Variant: v.String(), Addr: s.dev.Address(), DetectorAddr: s.p.DetectorAddr}
	if chip, otp, err := s.dev.Revision(); err == nil {
		info.ChipRev, info.OTPRev = chip, otp
	}
	s.conn.Publish(s.conn.NewMessage(Topic(s.p.Name, tokInfo), info, true))
	println("[charger]", s.p.Name, "probed", v.String(), "at", conv.Hex8String(byte(s.dev.Address())))

	if s.p.Interrupts != 0 {
		if err := s.dev.SetInterruptMask(s.p.Interrupts); err != nil {
			return err
		}
	}
	if s.p.Initial != nil {
		if err := s.dev.ApplyConfiguration(*s.p.Initial); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) onAlert() {
	flags, err := s.dev.InterruptFlags()
	if err != nil {
		s.logErr("alert", err)
	} else if flags != 0 {
		println("[charger]", s.p.Name, "alert flags", conv.Hex8String(byte(flags)))
	}
	s.refresh()
}

// refresh reads status and publishes it. A failed read republishes the
// last status marked stale.
func (s *Service) refresh() (max7797x.Status, error) {
	st, err := s.dev.RefreshStatus()
	if err != nil {
		s.logErr("refresh", err)
	}
	s.publishValue(st)
	if err == nil {
		s.emitChanges(st)
	}
	return st, err
}

func (s *Service) emitChanges(st max7797x.Status) {
	ts := timex.NowMs()
	if !s.published || st.State != s.pubState {
		ev := types.ChargerEvent{Kind: "state", To: st.State.String(), TS: ts}
		if s.published {
			ev.From = s.pubState.String()
		}
		s.conn.Publish(s.conn.NewMessage(Topic(s.p.Name, tokEvent), ev, false))
	}
	if newFaults := st.Faults &^ s.pubFaults; newFaults != 0 {
		println("[charger]", s.p.Name, "fault", newFaults.String())
		ev := types.ChargerEvent{Kind: "fault", Faults: newFaults.Names(), TS: ts}
		s.conn.Publish(s.conn.NewMessage(Topic(s.p.Name, tokEvent), ev, false))
	}
	s.pubState, s.pubFaults, s.published = st.State, st.Faults, true
}

// ---------------- Control ----------------

func (s *Service) handle(m *bus.Message) {
	verb, _ := m.Topic[len(m.Topic)-1].(string)
	var (
		data any
		err  error
	)
	switch verb {
	case VerbRead:
		var st max7797x.Status
		st, err = s.refresh()
		data = s.value(st)
	case VerbEnable:
		err = s.dev.Enable()
	case VerbDisable:
		err = s.dev.Disable()
	case VerbConfigure:
		var cfg max7797x.Configuration
		if cfg, err = decodeConfigure(m.Payload); err == nil {
			err = s.dev.ApplyConfiguration(cfg)
		}
	case VerbAck:
		if err = s.dev.AcknowledgeFault(); err == nil {
			s.conn.Publish(s.conn.NewMessage(Topic(s.p.Name, tokEvent),
				types.ChargerEvent{Kind: "ack", TS: timex.NowMs()}, false))
			s.pubFaults = 0
			s.publishValue(s.dev.LastStatus())
		}
	case VerbDetect:
		var r max14578.Result
		if r, err = s.dev.Detect(); err == nil {
			data = detectData(r, 0)
		}
	case VerbApplyPolicy:
		var (
			r  max14578.Result
			mA uint16
		)
		r, mA, err = s.dev.ApplyDetectedCurrentPolicy()
		if err == nil {
			println("[charger]", s.p.Name, "input limit", conv.UtoaString(uint64(mA)), "mA for", r.Class.String())
			data = detectData(r, mA)
		}
	case VerbWatchdog:
		on, ok := m.Payload.(bool)
		if !ok {
			err = &errcode.E{C: errcode.InvalidPayload, Op: "charger.watchdog", Msg: "want bool"}
			break
		}
		err = s.dev.SetWatchdog(on)
	case VerbKick:
		err = s.dev.KickWatchdog()
	default:
		err = &errcode.E{C: errcode.Unsupported, Op: "charger.ctrl", Msg: verb}
	}
	if err != nil && verb != VerbRead {
		s.logErr(verb, err)
	}
	s.conn.Reply(m, reply(data, err), false)
}

func decodeConfigure(payload any) (max7797x.Configuration, error) {
	switch x := payload.(type) {
	case types.ChargerConfigure:
		return ConfigurationFrom(x)
	case *types.ChargerConfigure:
		if x == nil {
			break
		}
		return ConfigurationFrom(*x)
	case max7797x.Configuration:
		return x, nil
	case map[string]any:
		c, err := ConfigureFromMap(x)
		if err != nil {
			return max7797x.Configuration{}, err
		}
		return ConfigurationFrom(c)
	}
	return max7797x.Configuration{}, &errcode.E{C: errcode.InvalidPayload, Op: "charger.configure"}
}

func reply(data any, err error) types.Reply {
	if err != nil {
		return types.Reply{OK: false, Code: string(errcode.Of(err)), Error: err.Error(), Data: data}
	}
	return types.Reply{OK: true, Code: string(errcode.OK), Data: data}
}

func detectData(r max14578.Result, mA uint16) types.ChargerDetect {
	return types.ChargerDetect{
		Class:     r.Class.String(),
		Type:      r.Type.String(),
		VBusValid: r.VBusValid,
		Running:   r.Running,
		Limit_mA:  mA,
	}
}

// ---------------- Publishing ----------------

func (s *Service) value(st max7797x.Status) types.ChargerValue {
	return Value(st, s.dev.Armed(), timex.NowMs())
}

// Value renders a driver status as the wire payload.
func Value(st max7797x.Status, armed bool, ts int64) types.ChargerValue {
	return types.ChargerValue{
		State:      st.State.String(),
		Faults:     st.Faults.Names(),
		Mode:       st.Mode.String(),
		Armed:      armed,
		Stale:      st.Stale,
		ChgIn:      st.Details.ChgIn.String(),
		Battery:    st.Details.Battery.String(),
		Thermistor: st.Details.Thermistor.String(),
		ThermalReg: st.Details.ThermalRegulation,
		TS:         ts,
	}
}

func (s *Service) publishValue(st max7797x.Status) {
	s.conn.Publish(s.conn.NewMessage(Topic(s.p.Name, tokValue), s.value(st), true))
}

func (s *Service) publishState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(Topic(s.p.Name, tokState),
		types.ServiceState{Level: level, Status: status, TS: timex.NowMs()}, true))
}

func (s *Service) logErr(op string, err error) {
	println("[charger]", s.p.Name, op, "failed:", err.Error())
}
