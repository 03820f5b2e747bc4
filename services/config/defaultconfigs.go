package config

// Board configurations keyed by board ID. The "charger" object is
// consumed by the charger service manager, "heartbeat" by the watchdog
// keepalive.
const cfgPico = `{
  "heartbeat": {"interval": 10, "kick": ["main"]},
  "charger": {
    "devices": [
      {
        "id": "main",
        "params": {
          "variant": "max77975",
          "addr": 107,
          "detector_addr": 53,
          "poll_ms": 2000,
          "interrupts": 88,
          "initial": {
            "fast_charge_current_mA": 1500,
            "charge_voltage_mV": 4200,
            "top_off_current_mA": 150,
            "fast_charge_timer_h": 5
          }
        }
      }
    ]
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
}
