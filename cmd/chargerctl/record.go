package main

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"powercode-go/types"
)

// Record types for the CBOR watch stream. Each record is a two-element
// array: [type, payload_map] with integer payload keys.
const (
	recordValue uint8 = 1
	recordEvent uint8 = 2
)

func encodeRecord(kind uint8, payload any) ([]byte, error) {
	return cbor.Marshal([]any{kind, payload})
}

// decodeRecord parses a record produced by encodeRecord.
func decodeRecord(data []byte) (uint8, any, error) {
	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return 0, nil, fmt.Errorf("decode record: %w", err)
	}
	if len(raw) != 2 {
		return 0, nil, fmt.Errorf("expected 2-element array, got %d elements", len(raw))
	}
	var kind uint8
	if err := cbor.Unmarshal(raw[0], &kind); err != nil {
		return 0, nil, fmt.Errorf("record type: %w", err)
	}
	switch kind {
	case recordValue:
		var v types.ChargerValue
		if err := cbor.Unmarshal(raw[1], &v); err != nil {
			return kind, nil, err
		}
		return kind, v, nil
	case recordEvent:
		var ev types.ChargerEvent
		if err := cbor.Unmarshal(raw[1], &ev); err != nil {
			return kind, nil, err
		}
		return kind, ev, nil
	}
	return kind, nil, fmt.Errorf("unknown record type %d", kind)
}
