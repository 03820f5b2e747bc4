package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 10, 1); got != 5 {
		t.Fatalf("swapped bounds: got %d", got)
	}
	if got := Clamp[uint16](4000, 100, 3500); got != 3500 {
		t.Fatalf("upper: got %d", got)
	}
	if got := Clamp(-3, 0, 7); got != 0 {
		t.Fatalf("lower: got %d", got)
	}
}

func TestBetween(t *testing.T) {
	cases := []struct {
		v, lo, hi uint32
		want      bool
	}{
		{100, 100, 3500, true},
		{3500, 100, 3500, true},
		{3550, 100, 3500, false},
		{99, 100, 3500, false},
		{200, 3500, 100, true},
	}
	for _, c := range cases {
		if got := Between(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Between(%d,%d,%d)=%v want %v", c.v, c.lo, c.hi, got, c.want)
		}
	}
}

func TestStepIndexRoundTrip(t *testing.T) {
	for i := uint32(0); i < 64; i++ {
		v := StepValue(i, 4000, 10)
		if got := StepIndex(v, 4000, 10); got != i {
			t.Fatalf("index %d: got %d", i, got)
		}
	}
	if got := StepIndex[uint32](4019, 4000, 10); got != 1 {
		t.Fatalf("floor: got %d", got)
	}
	if got := StepIndex[uint32](10, 4000, 10); got != 0 {
		t.Fatalf("below base: got %d", got)
	}
	if got := StepIndex[uint32](10, 0, 0); got != 0 {
		t.Fatalf("zero step: got %d", got)
	}
}
