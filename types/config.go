package types

// ChargersConfig is supplied on topic "config/charger".
type ChargersConfig struct {
	Devices []ChargerDevice `json:"devices"`
}

// ChargerDevice describes one charger instance. Params is decoded by the
// charger service (see charger.ParamsFromMap).
type ChargerDevice struct {
	ID     string `json:"id"`
	Params any    `json:"params,omitempty"`
}
