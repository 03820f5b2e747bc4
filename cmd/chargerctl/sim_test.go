package main

import (
	"bytes"
	"strings"
	"testing"
)

// run executes the CLI against the simulated bus.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--sim"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSimStatus(t *testing.T) {
	out, err := run(t, "status")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"max77975", "state       off", "fast charge 500 mA", "fc timer    4h0m0s", "(reset 4h0m0s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestSimEnable(t *testing.T) {
	if _, err := run(t, "enable"); err != nil {
		t.Fatal(err)
	}
}

func TestSimApplyPolicy(t *testing.T) {
	out, err := run(t, "--detector-addr", "53", "apply-policy")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "input limit set to 1500 mA") {
		t.Fatalf("out:\n%s", out)
	}
	detectorAddr = 0
}

func TestSimConfigureRejectsOutOfRange(t *testing.T) {
	_, err := run(t, "configure", "--fast-charge", "3.55A")
	if err == nil || !strings.Contains(err.Error(), "invalid_configuration") {
		t.Fatalf("err=%v", err)
	}
	cfgFastCharge = currentFlag{}
}

func TestSimShipNeedsConfirm(t *testing.T) {
	if _, err := run(t, "ship"); err == nil {
		t.Fatal("ship without --yes succeeded")
	}
}

func TestSimMissingChipIsNoAck(t *testing.T) {
	_, err := run(t, "--addr", "0x10", "status")
	chargerAddr = 0x6B
	if err == nil || !strings.Contains(err.Error(), "no_ack") {
		t.Fatalf("err=%v", err)
	}
}
