package main

import (
	"context"
	"time"

	"weatherunit-go/bus"
	"weatherunit-go/platform"
	"weatherunit-go/services/config"
	"weatherunit-go/services/console"
	"weatherunit-go/services/detect"
	"weatherunit-go/services/heartbeat"
	"weatherunit-go/services/input"
	"weatherunit-go/services/netmgr"
	"weatherunit-go/services/probe"
	"weatherunit-go/services/screen"
	"weatherunit-go/services/sensors"
	"weatherunit-go/services/system"
	"weatherunit-go/services/timesync"
	"weatherunit-go/types"
)

const handshakeTimeout = 3 * time.Second

func check(step string, err error) bool {
	if err != nil {
		println("boot:", step, "FAIL:", err.Error())
		return false
	}
	println("boot:", step, "OK")
	return true
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot: environmental display unit")

	// Configuration defects are the only fatal boot condition: refuse to
	// run with an undefined hardware mapping.
	cfg, err := config.Load(platform.BoardName)
	if !check("config", err) {
		println("Error: halting, configuration unusable")
		return
	}

	board, err := platform.Setup(cfg)
	if !check("board", err) {
		board = &platform.Board{Name: cfg.Board}
	}

	// Peripheral probe. Missing devices are capability flags, not errors.
	rep := probe.Scan(board.Buses, board.ProbeTargets)
	for _, tg := range board.ProbeTargets {
		state := "missing"
		if rep.Present(tg.Name) {
			state = "present"
		}
		println("boot: probe", tg.Name, state)
	}

	// Wireless capability, decided once.
	var hs detect.Handshake
	if board.UART != nil {
		hs = func() bool { return netmgr.Handshake(board.UART, handshakeTimeout) }
	}
	kind := detect.Detect(rep, detect.Board{Name: board.Name, NativeRadio: board.NativeRadio}, hs)
	println("boot: wireless", kind.String())

	var tr netmgr.Transport = netmgr.NullTransport{}
	var timeSrc timesync.TimeSource
	switch kind {
	case types.TransportNativeRadio:
		if board.Netlink != nil {
			tr = netmgr.NewNetlinkTransport(board.Netlink)
		}
		if board.DialUDP != nil {
			timeSrc = &timesync.SNTPSource{Dial: board.DialUDP}
		}
	case types.TransportExternalSerialModule:
		at := netmgr.NewATTransport(board.UART)
		tr = at
		timeSrc = &timesync.ATTimeSource{Tr: at, Server: cfg.Time.NTPServer}
	}

	// With wifi disabled or no transport, an empty profile list keeps the
	// manager parked in Disconnected.
	wifiCfg := cfg.Wifi
	if !cfg.Wifi.Enabled || kind == types.TransportNone {
		wifiCfg.Networks = nil
	}

	// Sensors that answered the probe get pollers.
	var sources []sensors.Source
	if bus0, ok := board.Buses["i2c0"]; ok {
		if rep.Present("aht20") {
			sources = append(sources, sensors.NewAHT20(bus0, uint16(cfg.Sensors.I2CAddrs["aht20"])))
		}
		if rep.Present("bmp280") {
			src, err := sensors.NewBMP280(bus0, uint16(cfg.Sensors.I2CAddrs["bmp280"]))
			if check("bmp280", err) {
				sources = append(sources, src)
			}
		}
	}

	ctx := context.WithValue(context.Background(), config.CtxBoardKey, cfg.Board)
	msgBus := bus.NewBus(8)
	config.NewConfigService().Start(ctx, msgBus.NewConnection("config"))
	var hb heartbeat.Service
	_ = hb.Start(ctx, msgBus.NewConnection("heartbeat"))

	loop := system.New(system.Options{
		Config:     cfg,
		Transport:  kind,
		Manager:    netmgr.New(tr, wifiCfg),
		Sync:       timesync.New(timeSrc, cfg.Time),
		Buttons:    input.New(cfg.Buttons),
		ReadLevels: board.ReadLevels,
		Screen:     screen.New(cfg.Display),
		Sensors:    sensors.NewPoller(sources, cfg.Sensors),
		Controller: sensors.NewControllerPoller(nil, cfg.Sensors),
		Renderer:   board.Renderer,
		Bus:        msgBus,
		ProbeFunc: func() probe.Report {
			return probe.Scan(board.Buses, board.ProbeTargets)
		},
	})

	if board.ConsoleOut != nil {
		c := console.New(board.ConsoleOut)
		loop.RegisterConsole(c)
		if board.ConsoleIn != nil {
			go c.Run(ctx, board.ConsoleIn)
		}
	}

	println("boot: entering main loop")
	loop.Run(ctx)
}
