// Package heartbeat keeps charger I²C watchdogs fed. On every tick it logs
// a heartbeat and sends a kick request to each configured charger.
//
// Configuration arrives retained on config/heartbeat:
//
//	{"interval": 10, "kick": ["main"]}
package heartbeat

import (
	"context"
	"time"

	"powercode-go/bus"
	"powercode-go/services/charger"
	"powercode-go/types"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

const defaultInterval = 10 * time.Second

type Service struct {
	interval time.Duration
	kick     []string
	// Per-request reply timeout.
	timeout time.Duration
}

func New() *Service {
	return &Service{interval: defaultInterval, timeout: time.Second}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case t := <-tick.C:
			println("[heartbeat]", t.Format("15:04:05"))
			s.kickAll(ctx, conn)
		case msg := <-cfgSub.Channel():
			if s.apply(msg.Payload) {
				tick.Reset(s.interval)
				println("[heartbeat] interval", int(s.interval/time.Second), "s, kicking", len(s.kick), "chargers")
			}
		}
	}
}

// apply reads interval (seconds) and kick (charger names) from a decoded
// JSON object. Unknown or malformed keys are ignored.
func (s *Service) apply(payload any) bool {
	m, ok := payload.(map[string]any)
	if !ok {
		return false
	}
	if iv, ok := m["interval"].(float64); ok && iv >= 1 {
		s.interval = time.Duration(iv) * time.Second
	}
	if names, ok := m["kick"].([]any); ok {
		s.kick = s.kick[:0]
		for _, n := range names {
			if name, ok := n.(string); ok && name != "" {
				s.kick = append(s.kick, name)
			}
		}
	}
	return true
}

func (s *Service) kickAll(ctx context.Context, conn *bus.Connection) {
	for _, name := range s.kick {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		msg, err := conn.RequestWait(rctx, conn.NewMessage(charger.Topic(name, "ctrl", charger.VerbKick), nil, false))
		cancel()
		if err != nil {
			println("[heartbeat] kick", name, "failed:", err.Error())
			continue
		}
		if r, ok := msg.Payload.(types.Reply); ok && !r.OK {
			println("[heartbeat] kick", name, "failed:", r.Code)
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
