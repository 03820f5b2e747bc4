//go:build rp2040 || rp2350

// Firmware for a Pico driving one MAX7797x charger on i2c0. The charger
// CHG_INT line (open drain, active low) is wired to GP6.
package main

import (
	"context"
	"machine"
	"runtime"
	"time"

	"powercode-go/bus"
	"powercode-go/services/charger"
	"powercode-go/services/config"
	"powercode-go/services/heartbeat"
	"powercode-go/types"
)

const (
	deviceID = "pico"
	alertPin = machine.GP6
)

func main() {
	time.Sleep(3 * time.Second)
	ctx := context.Background()

	println("[main] configuring i2c0 …")
	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		println("[main] i2c0 configure failed:", err.Error())
	}

	println("[main] bootstrapping bus …")
	b := bus.NewBus(4)
	uiConn := b.NewConnection("ui")

	mon := uiConn.Subscribe(bus.T("charger", bus.Multi))
	go func() {
		for m := range mon.Channel() {
			println("[monitor] <-", m.Topic.String())
			if v, ok := m.Payload.(types.ChargerValue); ok {
				println("[monitor]   state:", v.State, "mode:", v.Mode, "armed:", v.Armed)
			}
		}
	}()

	println("[main] starting charger manager …")
	go charger.NewManager(i2c, b.NewConnection("charger")).Run(ctx)
	_ = heartbeat.New().Start(ctx, b.NewConnection("heartbeat"))

	println("[main] publishing config for", deviceID, "…")
	config.NewConfigService().Start(config.WithDevice(ctx, deviceID), b.NewConnection("config"))

	// CHG_INT edges are forwarded from the ISR through a one-slot channel
	// so the handler never blocks or allocates.
	alerts := make(chan struct{}, 1)
	alertPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	_ = alertPin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		select {
		case alerts <- struct{}{}:
		default:
		}
	})
	go func() {
		for range alerts {
			uiConn.Publish(uiConn.NewMessage(charger.Topic("main", "alert"), nil, false))
		}
	}()

	time.Sleep(500 * time.Millisecond)

	read := charger.Topic("main", "ctrl", charger.VerbRead)
	for {
		rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		reply, err := uiConn.RequestWait(rctx, uiConn.NewMessage(read, nil, false))
		cancel()
		if err != nil {
			println("[main] read error:", err.Error())
		} else if r, ok := reply.Payload.(types.Reply); ok && !r.OK {
			println("[main] read failed:", r.Code)
		}
		printMem()
		time.Sleep(5 * time.Second)
	}
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
