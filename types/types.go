// Package types holds the payloads exchanged on the bus. Field tags serve
// both JSON (config and control payloads) and CBOR (recorded streams).
package types

// ServiceState is published retained on "charger/<name>/state".
type ServiceState struct {
	Level  string `json:"level"`  // "idle", "ready", "degraded", "stopped"
	Status string `json:"status"` // short code, e.g. "probe_failed"
	TS     int64  `json:"ts_ms"`
}

// Reply answers every control verb. Code is an errcode value; "ok" on
// success.
type Reply struct {
	OK    bool   `json:"ok"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}
