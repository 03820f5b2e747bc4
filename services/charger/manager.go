package charger

import (
	"context"
	"sync"

	"powercode-go/bus"
	"powercode-go/errcode"
	"powercode-go/types"
	"powercode-go/x/i2cbus"

	"tinygo.org/x/drivers"
)

// TopicConfig carries the charger configuration, normally retained by the
// config service.
var TopicConfig = bus.T("config", tokCharger)

// Manager starts one Service per configured device on a shared I²C bus and
// restarts the set whenever the configuration changes. All services reach
// the bus through one owner, and a new generation starts only after the
// previous one has exited.
type Manager struct {
	owner *i2cbus.Owner
	conn  *bus.Connection

	stop context.CancelFunc
	wg   sync.WaitGroup
}

// NewManager takes ownership of i2c. Nothing else may use it directly.
func NewManager(i2c drivers.I2C, conn *bus.Connection) *Manager {
	return &Manager{owner: i2cbus.New(i2c, 0), conn: conn}
}

// Run blocks until ctx is cancelled, then stops the services and releases
// the bus.
func (m *Manager) Run(ctx context.Context) {
	sub := m.conn.Subscribe(TopicConfig)
	defer m.conn.Unsubscribe(sub)
	defer m.owner.Stop()

	for {
		select {
		case <-ctx.Done():
			m.stopAll()
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				m.stopAll()
				return
			}
			if msg.Payload == nil {
				m.stopAll()
				continue
			}
			ps, err := DecodeConfig(msg.Payload)
			if err != nil {
				println("[charger] config rejected:", err.Error())
				continue
			}
			m.apply(ctx, ps)
		}
	}
}

func (m *Manager) apply(ctx context.Context, ps []Params) {
	m.stopAll()
	runCtx, cancel := context.WithCancel(ctx)
	m.stop = cancel
	for _, p := range ps {
		svc, err := New(m.owner, m.conn, p)
		if err != nil {
			println("[charger]", p.Name, "not started:", err.Error())
			continue
		}
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			svc.Run(runCtx)
		}()
	}
}

// stopAll cancels the running generation and waits for every service to
// return, so its last state publish and bus transaction are done.
func (m *Manager) stopAll() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
	m.wg.Wait()
}

// DecodeConfig accepts a types.ChargersConfig or the equivalent untyped
// JSON object. A device without a name is named by its ID.
func DecodeConfig(payload any) ([]Params, error) {
	var devs []types.ChargerDevice
	switch x := payload.(type) {
	case types.ChargersConfig:
		devs = x.Devices
	case *types.ChargersConfig:
		if x != nil {
			devs = x.Devices
		}
	case map[string]any:
		list, ok := x["devices"].([]any)
		if !ok {
			return nil, &errcode.E{C: errcode.InvalidPayload, Op: "charger.config", Msg: "devices"}
		}
		for _, it := range list {
			dm, ok := it.(map[string]any)
			if !ok {
				return nil, &errcode.E{C: errcode.InvalidPayload, Op: "charger.config", Msg: "device"}
			}
			id, _ := dm["id"].(string)
			devs = append(devs, types.ChargerDevice{ID: id, Params: dm["params"]})
		}
	default:
		return nil, &errcode.E{C: errcode.InvalidPayload, Op: "charger.config"}
	}

	out := make([]Params, 0, len(devs))
	for _, d := range devs {
		var p Params
		switch x := d.Params.(type) {
		case nil:
		case Params:
			p = x
		case map[string]any:
			var err error
			if p, err = ParamsFromMap(withName(x, d.ID)); err != nil {
				return nil, err
			}
		default:
			return nil, &errcode.E{C: errcode.InvalidPayload, Op: "charger.config", Msg: d.ID}
		}
		if p.Name == "" {
			p.Name = d.ID
		}
		if err := p.validate(); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func withName(m map[string]any, id string) map[string]any {
	if _, ok := m["name"]; ok || id == "" {
		return m
	}
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out["name"] = id
	return out
}
