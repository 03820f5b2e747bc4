package mathx

import "golang.org/x/exp/constraints"

// StepIndex returns floor((v-base)/step) for v >= base, and 0 otherwise.
// A zero step yields 0.
func StepIndex[T constraints.Unsigned](v, base, step T) T {
	if step == 0 || v < base {
		return 0
	}
	return (v - base) / step
}

// StepValue is the inverse of StepIndex: base + i*step.
func StepValue[T constraints.Unsigned](i, base, step T) T {
	return base + i*step
}
