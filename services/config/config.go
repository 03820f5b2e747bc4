// Package config publishes the per-board configuration on the bus. Each
// top-level key of the board's JSON object becomes a retained message on
// config/<key>, where the owning service picks it up.
package config

import (
	"context"
	"encoding/json"

	"powercode-go/bus"
	"powercode-go/errcode"
)

const (
	serviceName  = "config"
	configPrefix = "config"
)

type deviceKey struct{}

// WithDevice returns ctx carrying the board ID whose configuration should
// be published.
func WithDevice(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deviceKey{}, id)
}

// EmbeddedConfigLookup resolves a board ID to raw JSON. Tests and
// firmware builds may replace it.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(deviceKey{}).(string)
	if device == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: "config.publish", Msg: "missing device id"}
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return &errcode.E{C: errcode.Unavailable, Op: "config.publish", Msg: "no config for " + device}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return &errcode.E{C: errcode.InvalidPayload, Op: "config.publish", Err: err}
	}
	for k, v := range m {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}
	return nil
}

// Start publishes the configuration from a goroutine and logs failures.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("[config]", err.Error())
		}
	}()
}
