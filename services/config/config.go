package config

import (
	"context"
	"encoding/json"
	"sort"

	"weatherunit-go/bus"
	"weatherunit-go/errcode"
	"weatherunit-go/types"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxBoardKey  = "board" // context key used for board ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(board string) ([]byte, bool) {
	b, ok := embeddedConfigs[board]
	return b, ok
}

// -----------------------------------------------------------------------------
// Raw JSON shape
// -----------------------------------------------------------------------------

type rawProfile struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
	Priority int    `json:"priority"`
}

type rawConfig struct {
	Board string `json:"board"`
	Wifi  struct {
		types.WifiConfig
		Networks []rawProfile `json:"networks"`
	} `json:"wifi"`
	Time    types.TimeConfig `json:"time"`
	Buttons struct {
		types.ButtonConfig
		Pins map[string]int `json:"pins"`
	} `json:"buttons"`
	Display struct {
		types.DisplayConfig
		Cycle []string `json:"cycle"`
	} `json:"display"`
	Sensors struct {
		types.SensorConfig
		I2CAddrs map[string]int `json:"i2c_addrs"`
	} `json:"sensors"`
	Heartbeat types.HeartbeatConfig `json:"heartbeat"`
}

func cfgErr(msg string) error {
	return &errcode.E{C: errcode.Config, Op: "config.Load", Msg: msg}
}

// -----------------------------------------------------------------------------
// Load + validate
// -----------------------------------------------------------------------------

// Load parses and validates the embedded configuration for a board.
// Any defect here is fatal: the unit refuses to start rather than run with an
// undefined hardware mapping.
func Load(board string) (types.Config, error) {
	var cfg types.Config

	data, ok := EmbeddedConfigLookup(board)
	if !ok || len(data) == 0 {
		return cfg, cfgErr("no embedded config for board " + board)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, &errcode.E{C: errcode.Config, Op: "config.Load", Msg: "bad JSON", Err: err}
	}
	if raw.Board == "" {
		raw.Board = board
	}

	cfg.Board = raw.Board
	cfg.Time = raw.Time
	cfg.Heartbeat = raw.Heartbeat

	// Wifi profiles: unique priorities, stable order on ties, sorted ascending.
	cfg.Wifi = raw.Wifi.WifiConfig
	if raw.Wifi.Enabled && len(raw.Wifi.Networks) == 0 {
		return cfg, cfgErr("wifi enabled but no networks configured")
	}
	seen := map[int]string{}
	for _, n := range raw.Wifi.Networks {
		if n.SSID == "" {
			return cfg, cfgErr("network without ssid")
		}
		if prev, dup := seen[n.Priority]; dup {
			return cfg, cfgErr("duplicate priority for " + prev + " and " + n.SSID)
		}
		seen[n.Priority] = n.SSID
		cfg.Wifi.Networks = append(cfg.Wifi.Networks, types.NetworkProfile{
			SSID:     n.SSID,
			Password: n.Password,
			Priority: n.Priority,
		})
	}
	sort.SliceStable(cfg.Wifi.Networks, func(a, b int) bool {
		return cfg.Wifi.Networks[a].Priority < cfg.Wifi.Networks[b].Priority
	})
	applyDefault(&cfg.Wifi.MaxAttempts, 3)
	applyDefault(&cfg.Wifi.AttemptTimeoutS, 10)
	applyDefault(&cfg.Wifi.BackoffS, 30)
	applyDefault(&cfg.Wifi.KeepAliveS, 5)

	applyDefault(&cfg.Time.SyncIntervalS, 3600)
	if cfg.Time.NTPServer == "" {
		cfg.Time.NTPServer = "pool.ntp.org"
	}

	// Buttons: every line must have a pin, and pins must not collide.
	cfg.Buttons = raw.Buttons.ButtonConfig
	applyDefault(&cfg.Buttons.DebounceTicks, 3)
	usedPins := map[int]string{}
	for ev := types.ButtonUp; ev < types.ButtonCount; ev++ {
		pin, ok := raw.Buttons.Pins[ev.String()]
		if !ok {
			return cfg, cfgErr("no pin assigned to button " + ev.String())
		}
		if pin < 0 {
			return cfg, cfgErr("negative pin for button " + ev.String())
		}
		if prev, dup := usedPins[pin]; dup {
			return cfg, cfgErr("pin shared by buttons " + prev + " and " + ev.String())
		}
		usedPins[pin] = ev.String()
		cfg.Buttons.Pins[ev] = pin
	}

	// Screen cycle: non-empty, known names only, Overview must be a member.
	cfg.Display = raw.Display.DisplayConfig
	applyDefault(&cfg.Display.StaleAfterS, 30)
	if len(raw.Display.Cycle) == 0 {
		return cfg, cfgErr("empty screen cycle")
	}
	hasOverview := false
	for _, name := range raw.Display.Cycle {
		s, ok := types.ScreenByName(name)
		if !ok {
			return cfg, cfgErr("unknown screen " + name)
		}
		if s == types.ScreenOverview {
			hasOverview = true
		}
		cfg.Display.Cycle = append(cfg.Display.Cycle, s)
	}
	if !hasOverview {
		return cfg, cfgErr("screen cycle must contain overview")
	}

	cfg.Sensors = raw.Sensors.SensorConfig
	applyDefault(&cfg.Sensors.PollIntervalS, 5)
	cfg.Sensors.I2CAddrs = map[string]int{}
	for name, addr := range raw.Sensors.I2CAddrs {
		if addr <= 0 || addr > 0x7f {
			return cfg, cfgErr("bad i2c address for " + name)
		}
		cfg.Sensors.I2CAddrs[name] = addr
	}

	applyDefault(&cfg.Heartbeat.IntervalS, 2)

	return cfg, nil
}

func applyDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig reads the board config from embedded data and publishes each
// top-level section as a retained message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	board, _ := ctx.Value(CtxBoardKey).(string)
	if board == "" {
		return cfgErr("missing board ID in context")
	}

	raw, ok := EmbeddedConfigLookup(board)
	if !ok || len(raw) == 0 {
		return cfgErr("no embedded config for board " + board)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return &errcode.E{C: errcode.Config, Op: "config.publish", Err: err}
	}

	for k, v := range m {
		conn.Publish(&bus.Message{
			Topic:    bus.T(configPrefix, k),
			Payload:  v,
			Retained: true,
		})
	}
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("Error: config publish failed:", err.Error())
		}
	}()
}
