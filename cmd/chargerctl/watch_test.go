package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"powercode-go/drivers/max7797x"
	"powercode-go/types"
)

func TestWatcherEmitsChangesOnly(t *testing.T) {
	var buf bytes.Buffer
	w := &watcher{out: &buf}

	charging := max7797x.Status{State: max7797x.StateFastCharge, Mode: max7797x.ModeCharge}
	faulted := max7797x.Status{State: max7797x.StateFault, Mode: max7797x.ModeCharge, Faults: max7797x.FaultBatteryTemperature}

	for _, st := range []max7797x.Status{charging, charging, faulted} {
		if err := w.observe(st, true, 0); err != nil {
			t.Fatal(err)
		}
	}
	out := buf.String()
	if n := strings.Count(out, "event state"); n != 2 {
		t.Fatalf("%d state events:\n%s", n, out)
	}
	if !strings.Contains(out, "event state fast_charge -> fault") {
		t.Fatalf("missing transition:\n%s", out)
	}
	if n := strings.Count(out, "event fault"); n != 1 {
		t.Fatalf("%d fault events:\n%s", n, out)
	}
}

func TestWatcherStaleSkipsEvents(t *testing.T) {
	var buf bytes.Buffer
	w := &watcher{out: &buf}
	if err := w.observe(max7797x.Status{State: max7797x.StateUnknown, Stale: true}, true, 0); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); strings.Contains(out, "event") || !strings.Contains(out, "stale") {
		t.Fatalf("out=%q", out)
	}
}

func TestCBORRecords(t *testing.T) {
	var buf bytes.Buffer
	w := &watcher{out: &buf, cbor: true}
	st := max7797x.Status{State: max7797x.StateDone, Mode: max7797x.ModeCharge}
	if err := w.observe(st, true, 1234); err != nil {
		t.Fatal(err)
	}

	dec := cbor.NewDecoder(&buf)
	var recs []cbor.RawMessage
	for {
		var raw cbor.RawMessage
		if err := dec.Decode(&raw); err != nil {
			break
		}
		recs = append(recs, raw)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}

	kind, p, err := decodeRecord(recs[0])
	if err != nil || kind != recordValue {
		t.Fatalf("kind=%d err=%v", kind, err)
	}
	if v := p.(types.ChargerValue); v.State != "done" || !v.Armed || v.TS != 1234 {
		t.Fatalf("value=%+v", v)
	}
	kind, p, err = decodeRecord(recs[1])
	if err != nil || kind != recordEvent {
		t.Fatalf("kind=%d err=%v", kind, err)
	}
	if ev := p.(types.ChargerEvent); ev.Kind != "state" || ev.To != "done" {
		t.Fatalf("event=%+v", ev)
	}

	// Payload keys are integers on the wire.
	var generic []any
	if err := cbor.Unmarshal(recs[0], &generic); err != nil {
		t.Fatal(err)
	}
	m, ok := generic[1].(map[any]any)
	if !ok {
		t.Fatalf("payload %T", generic[1])
	}
	if m[uint64(1)] != "done" {
		t.Fatalf("key 1=%v", m[uint64(1)])
	}
}

func TestDecodeRecordRejects(t *testing.T) {
	b, _ := cbor.Marshal([]any{uint8(9), map[int]any{}})
	if _, _, err := decodeRecord(b); err == nil {
		t.Fatal("unknown type accepted")
	}
	b, _ = cbor.Marshal([]any{1})
	if _, _, err := decodeRecord(b); err == nil {
		t.Fatal("short array accepted")
	}
}
