package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"powercode-go/bus"
	"powercode-go/errcode"
	"powercode-go/services/charger"
)

func TestPublishesRetainedPerKey(t *testing.T) {
	old := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "bench" {
			return nil, false
		}
		return []byte(`{"charger": {"devices": []}, "debug": true}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = old })

	b := bus.NewBus(8)
	conn := b.NewConnection("test")
	if err := NewConfigService().publishConfig(WithDevice(context.Background(), "bench"), conn); err != nil {
		t.Fatal(err)
	}

	sub := conn.Subscribe(bus.T(configPrefix, bus.Multi))
	got := map[string]any{}
	deadline := time.After(300 * time.Millisecond)
	for len(got) < 2 {
		select {
		case m := <-sub.Channel():
			key, _ := m.Topic[1].(string)
			got[key] = m.Payload
		case <-deadline:
			t.Fatalf("got %v", got)
		}
	}
	if v, ok := got["debug"].(bool); !ok || !v {
		t.Fatalf("debug=%#v", got["debug"])
	}
	if m, ok := got["charger"].(map[string]any); !ok || m["devices"] == nil {
		t.Fatalf("charger=%#v", got["charger"])
	}
}

func TestEmbeddedPicoConfigDecodes(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	if err := NewConfigService().publishConfig(WithDevice(context.Background(), "pico"), conn); err != nil {
		t.Fatal(err)
	}

	sub := conn.Subscribe(charger.TopicConfig)
	var payload any
	select {
	case m := <-sub.Channel():
		payload = m.Payload
	case <-time.After(300 * time.Millisecond):
		t.Fatal("no retained config/charger")
	}
	ps, err := charger.DecodeConfig(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 1 || ps[0].Name != "main" || ps[0].DetectorAddr != 53 || ps[0].Initial == nil {
		t.Fatalf("params=%+v", ps)
	}
	if got := ps[0].Initial.FastChargeCurrent_mA; got != 1500 {
		t.Fatalf("initial fast charge %d", got)
	}
}

func TestPublishErrors(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test")
	svc := NewConfigService()

	if err := svc.publishConfig(context.Background(), conn); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("missing device: err=%v", err)
	}
	if err := svc.publishConfig(WithDevice(context.Background(), "nope"), conn); !errors.Is(err, errcode.Unavailable) {
		t.Fatalf("unknown device: err=%v", err)
	}

	old := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(string) ([]byte, bool) { return []byte(`{"charger": `), true }
	t.Cleanup(func() { EmbeddedConfigLookup = old })
	if err := svc.publishConfig(WithDevice(context.Background(), "x"), conn); !errors.Is(err, errcode.InvalidPayload) {
		t.Fatalf("bad json: err=%v", err)
	}
}
