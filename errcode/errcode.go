package errcode

import (
	"errors"
	"strings"
)

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	Busy           Code = "busy"
	Unavailable    Code = "unavailable"
	Unsupported    Code = "unsupported"
	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	Timeout        Code = "timeout"

	// Transport.
	BusError Code = "bus_error"
	NoAck    Code = "no_ack"

	// Charger semantics.
	InvalidConfiguration Code = "invalid_configuration"
	OutOfRange           Code = "out_of_range"
	FaultActive          Code = "fault_active"
	UnknownChip          Code = "unknown_chip"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.X) match on the carried code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap returns an *E for op with code c and cause err.
func Wrap(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts the outermost Code from an error chain, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch x := e.(type) {
		case Code:
			return x
		case coder:
			return x.Code()
		}
	}
	return Error
}

// Transport error texts that mean the target did not acknowledge: TinyGo
// machine aborts, Linux ENXIO and EREMOTEIO (periph keeps only the text).
var nackHints = []string{
	"nack",
	"no ack",
	"not acknowledged",
	"no such device or address",
	"remote i/o error",
}

// MapDriverErr maps low-level transport errors to a Code. Errors that
// already carry a code keep it, a missing acknowledge is NoAck and anything
// else from a bus is a BusError.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	if c := Of(err); c != Error {
		return c
	}
	msg := strings.ToLower(err.Error())
	for _, h := range nackHints {
		if strings.Contains(msg, h) {
			return NoAck
		}
	}
	return BusError
}
