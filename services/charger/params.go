package charger

import (
	"time"

	"powercode-go/drivers/max14578"
	"powercode-go/drivers/max7797x"
	"powercode-go/errcode"
	"powercode-go/types"
	"powercode-go/x/timex"
)

// Params defines wiring and behaviour for one charger instance.
type Params struct {
	Name         string           // topic segment, required
	Variant      max7797x.Variant // VariantUnknown => resolved by Probe
	Addr         uint16           // 0 => max7797x.AddressDefault
	DetectorAddr uint16           // 0 => no detector

	// PollEvery refreshes status periodically. Zero means refresh only on
	// request or alert.
	PollEvery time.Duration

	// Unmasked CHG_INT sources; zero leaves the mask untouched.
	Interrupts max7797x.ChargerInterrupts

	// Applied once after probe. Nil leaves the hardware defaults.
	Initial *max7797x.Configuration

	// Zero entries fall back to max7797x.DefaultPolicy.
	Policy max7797x.CurrentPolicy
}

func (p Params) validate() error {
	if p.Name == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: "charger.params", Msg: "name required"}
	}
	if p.PollEvery < 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "charger.params", Msg: "poll_every"}
	}
	return nil
}

// ParamsFromMap decodes an untyped config object as produced by a JSON
// decoder: numbers arrive as float64.
//
//	{"name":"main","variant":"max77976","addr":107,"detector_addr":53,
//	 "poll_ms":1000,"interrupts":80,"initial":{...ChargerConfigure...},
//	 "policy_mA":{"sdp":500,"dcp":2000}}
func ParamsFromMap(m map[string]any) (Params, error) {
	var p Params
	bad := func(key string) (Params, error) {
		return Params{}, &errcode.E{C: errcode.InvalidParams, Op: "charger.params", Msg: key}
	}

	if v, ok := m["name"]; ok {
		s, ok := v.(string)
		if !ok {
			return bad("name")
		}
		p.Name = s
	}
	if v, ok := m["variant"]; ok {
		s, _ := v.(string)
		vr, ok := max7797x.ParseVariant(s)
		if !ok {
			return bad("variant")
		}
		p.Variant = vr
	}
	if n, ok, err := uintField(m, "addr", 0x7F); err != nil {
		return bad("addr")
	} else if ok {
		p.Addr = uint16(n)
	}
	if n, ok, err := uintField(m, "detector_addr", 0x7F); err != nil {
		return bad("detector_addr")
	} else if ok {
		p.DetectorAddr = uint16(n)
	}
	if n, ok, err := uintField(m, "poll_ms", 24*3600*1000); err != nil {
		return bad("poll_ms")
	} else if ok {
		p.PollEvery = timex.Ms(n)
	}
	if n, ok, err := uintField(m, "interrupts", 0xFF); err != nil {
		return bad("interrupts")
	} else if ok {
		p.Interrupts = max7797x.ChargerInterrupts(n)
	}
	if v, ok := m["initial"]; ok {
		cm, ok := v.(map[string]any)
		if !ok {
			return bad("initial")
		}
		cc, err := ConfigureFromMap(cm)
		if err != nil {
			return Params{}, err
		}
		cfg, err := ConfigurationFrom(cc)
		if err != nil {
			return Params{}, err
		}
		p.Initial = &cfg
	}
	if v, ok := m["policy_mA"]; ok {
		pm, ok := v.(map[string]any)
		if !ok {
			return bad("policy_mA")
		}
		for key := range pm {
			c, ok := parseClass(key)
			if !ok {
				return bad("policy_mA." + key)
			}
			n, _, err := uintField(pm, key, 0xFFFF)
			if err != nil {
				return bad("policy_mA." + key)
			}
			p.Policy[c] = uint16(n)
		}
	}
	return p, p.validate()
}

func parseClass(s string) (max14578.Class, bool) {
	for c := max14578.NoDevice; c <= max14578.Unknown; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// ConfigureFromMap decodes a "configure" payload that arrived as an
// untyped JSON object.
func ConfigureFromMap(m map[string]any) (types.ChargerConfigure, error) {
	var c types.ChargerConfigure
	u16 := func(key string, dst **uint16) error {
		n, ok, err := uintField(m, key, 0xFFFF)
		if err != nil {
			return &errcode.E{C: errcode.InvalidPayload, Op: "charger.configure", Msg: key}
		}
		if ok {
			v := uint16(n)
			*dst = &v
		}
		return nil
	}
	for _, f := range []struct {
		key string
		dst **uint16
	}{
		{"fast_charge_current_mA", &c.FastChargeCurrent_mA},
		{"input_current_limit_mA", &c.InputCurrentLimit_mA},
		{"charge_voltage_mV", &c.ChargeVoltage_mV},
		{"min_system_voltage_mV", &c.MinSystemVoltage_mV},
		{"top_off_current_mA", &c.TopOffCurrent_mA},
	} {
		if err := u16(f.key, f.dst); err != nil {
			return types.ChargerConfigure{}, err
		}
	}
	if n, ok, err := uintField(m, "top_off_time_s", 1<<32-1); err != nil {
		return types.ChargerConfigure{}, &errcode.E{C: errcode.InvalidPayload, Op: "charger.configure", Msg: "top_off_time_s"}
	} else if ok {
		v := uint32(n)
		c.TopOffTime_s = &v
	}
	if n, ok, err := uintField(m, "fast_charge_timer_h", 0xFF); err != nil {
		return types.ChargerConfigure{}, &errcode.E{C: errcode.InvalidPayload, Op: "charger.configure", Msg: "fast_charge_timer_h"}
	} else if ok {
		v := uint8(n)
		c.FastChargeTimer_h = &v
	}
	return c, nil
}

// ConfigurationFrom converts a wire payload to a driver configuration. An
// explicit zero for a current or voltage is rejected; omit the field to
// leave it unchanged.
func ConfigurationFrom(c types.ChargerConfigure) (max7797x.Configuration, error) {
	var cfg max7797x.Configuration
	for _, f := range []struct {
		name string
		src  *uint16
		dst  *uint16
	}{
		{"fast_charge_current_mA", c.FastChargeCurrent_mA, &cfg.FastChargeCurrent_mA},
		{"input_current_limit_mA", c.InputCurrentLimit_mA, &cfg.InputCurrentLimit_mA},
		{"charge_voltage_mV", c.ChargeVoltage_mV, &cfg.ChargeVoltage_mV},
		{"min_system_voltage_mV", c.MinSystemVoltage_mV, &cfg.MinSystemVoltage_mV},
		{"top_off_current_mA", c.TopOffCurrent_mA, &cfg.TopOffCurrent_mA},
	} {
		if f.src == nil {
			continue
		}
		if *f.src == 0 {
			return max7797x.Configuration{}, &errcode.E{C: errcode.InvalidConfiguration, Op: "charger.configure", Msg: f.name}
		}
		*f.dst = *f.src
	}
	if c.TopOffTime_s != nil {
		if *c.TopOffTime_s == 0 {
			return max7797x.Configuration{}, &errcode.E{C: errcode.InvalidConfiguration, Op: "charger.configure", Msg: "top_off_time_s"}
		}
		cfg.TopOffTime = time.Duration(*c.TopOffTime_s) * time.Second
	}
	if c.FastChargeTimer_h != nil {
		if *c.FastChargeTimer_h == 0 {
			cfg.FastChargeTimer = max7797x.FastChargeTimerOff
		} else {
			cfg.FastChargeTimer = time.Duration(*c.FastChargeTimer_h) * time.Hour
		}
	}
	return cfg, nil
}

// uintField reads m[key] as a non-negative integer no greater than max.
func uintField(m map[string]any, key string, max uint64) (uint64, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	var n uint64
	switch x := v.(type) {
	case float64:
		if x < 0 || x != float64(uint64(x)) {
			return 0, true, errcode.InvalidParams
		}
		n = uint64(x)
	case int:
		if x < 0 {
			return 0, true, errcode.InvalidParams
		}
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint32:
		n = uint64(x)
	case uint64:
		n = x
	default:
		return 0, true, errcode.InvalidParams
	}
	if n > max {
		return 0, true, errcode.InvalidParams
	}
	return n, true, nil
}
