package charger

import (
	"errors"
	"testing"
	"time"

	"powercode-go/drivers/max14578"
	"powercode-go/drivers/max7797x"
	"powercode-go/errcode"
	"powercode-go/types"
)

func TestParamsFromMap(t *testing.T) {
	p, err := ParamsFromMap(map[string]any{
		"name":          "main",
		"variant":       "max77976",
		"addr":          float64(0x6B),
		"detector_addr": float64(0x35),
		"poll_ms":       float64(250),
		"interrupts":    float64(0x50),
		"initial": map[string]any{
			"fast_charge_current_mA": float64(3000),
			"fast_charge_timer_h":    float64(0),
		},
		"policy_mA": map[string]any{"dcp": float64(2000)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "main" || p.Variant != max7797x.MAX77976 || p.Addr != 0x6B || p.DetectorAddr != 0x35 {
		t.Fatalf("got %+v", p)
	}
	if p.PollEvery != 250*time.Millisecond || p.Interrupts != max7797x.IntCharger|max7797x.IntChgIn {
		t.Fatalf("got %+v", p)
	}
	if p.Initial == nil || p.Initial.FastChargeCurrent_mA != 3000 || p.Initial.FastChargeTimer != max7797x.FastChargeTimerOff {
		t.Fatalf("initial=%+v", p.Initial)
	}
	if p.Policy[max14578.DedicatedCharger] != 2000 || p.Policy[max14578.StandardDownstreamPort] != 0 {
		t.Fatalf("policy=%v", p.Policy)
	}
}

func TestParamsFromMapRejects(t *testing.T) {
	cases := []map[string]any{
		{},
		{"name": "x", "variant": "max1"},
		{"name": "x", "addr": float64(300)},
		{"name": "x", "poll_ms": float64(-1)},
		{"name": "x", "addr": 1.5},
		{"name": "x", "policy_mA": map[string]any{"usb4": float64(100)}},
		{"name": 7},
	}
	for i, m := range cases {
		if _, err := ParamsFromMap(m); !errors.Is(err, errcode.InvalidParams) {
			t.Errorf("case %d: err=%v", i, err)
		}
	}
}

func TestConfigurationFrom(t *testing.T) {
	v := uint16(4350)
	tt := uint32(600)
	h := uint8(5)
	cfg, err := ConfigurationFrom(types.ChargerConfigure{ChargeVoltage_mV: &v, TopOffTime_s: &tt, FastChargeTimer_h: &h})
	if err != nil {
		t.Fatal(err)
	}
	want := max7797x.Configuration{ChargeVoltage_mV: 4350, TopOffTime: 10 * time.Minute, FastChargeTimer: 5 * time.Hour}
	if cfg != want {
		t.Fatalf("got %+v", cfg)
	}

	zero := uint16(0)
	if _, err := ConfigurationFrom(types.ChargerConfigure{InputCurrentLimit_mA: &zero}); !errors.Is(err, errcode.InvalidConfiguration) {
		t.Fatalf("err=%v", err)
	}
}

func TestDecodeConfig(t *testing.T) {
	ps, err := DecodeConfig(map[string]any{
		"devices": []any{
			map[string]any{"id": "main", "params": map[string]any{"variant": "77975"}},
			map[string]any{"id": "aux", "params": map[string]any{"name": "second", "addr": float64(0x6A)}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 2 || ps[0].Name != "main" || ps[0].Variant != max7797x.MAX77975 || ps[1].Name != "second" || ps[1].Addr != 0x6A {
		t.Fatalf("got %+v", ps)
	}
	if _, err := DecodeConfig(map[string]any{"devices": "nope"}); !errors.Is(err, errcode.InvalidPayload) {
		t.Fatalf("err=%v", err)
	}
}
