package system

import (
	"strings"
	"testing"
	"time"

	"weatherunit-go/bus"
	"weatherunit-go/services/console"
	"weatherunit-go/services/input"
	"weatherunit-go/services/netmgr"
	"weatherunit-go/services/probe"
	"weatherunit-go/services/screen"
	"weatherunit-go/services/sensors"
	"weatherunit-go/services/timesync"
	"weatherunit-go/types"
)

// ---- fakes ----

type instantTransport struct {
	up bool
}

func (t *instantTransport) BeginConnect(types.NetworkProfile) { t.up = false }
func (t *instantTransport) Poll(time.Time) netmgr.Attempt {
	t.up = true
	return netmgr.Attempt{State: netmgr.PollSuccess, SignalDBm: -50, IP: "10.0.0.9"}
}
func (t *instantTransport) LinkUp(time.Time) bool { return t.up }
func (t *instantTransport) Disconnect()           { t.up = false }

type fakeSensor struct{ reading sensors.Reading }

func (f *fakeSensor) Name() string        { return "fake" }
func (f *fakeSensor) Trigger() error      { return nil }
func (f *fakeSensor) Hint() time.Duration { return 0 }
func (f *fakeSensor) Collect() (sensors.Reading, error) {
	return f.reading, nil
}

type fakeRenderer struct {
	frames []types.ScreenFrame
}

func (f *fakeRenderer) Draw(frame types.ScreenFrame) error {
	f.frames = append(f.frames, frame)
	return nil
}

type fixedTimeSource struct{ epoch int64 }

func (f *fixedTimeSource) Fetch() (int64, error) { return f.epoch, nil }

// ---- harness ----

type harness struct {
	loop     *Loop
	renderer *fakeRenderer
	levels   [types.ButtonCount]bool
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := types.Config{
		Wifi: types.WifiConfig{
			Enabled:         true,
			Networks:        []types.NetworkProfile{{SSID: "Home", Password: "pw", Priority: 1}},
			MaxAttempts:     3,
			AttemptTimeoutS: 10,
			BackoffS:        30,
			KeepAliveS:      5,
		},
		Time:    types.TimeConfig{SyncIntervalS: 3600, NTPServer: "pool.ntp.org"},
		Buttons: types.ButtonConfig{DebounceTicks: 3},
		Display: types.DisplayConfig{
			StaleAfterS: 30,
			Cycle:       []types.Screen{types.ScreenOverview, types.ScreenTemperature, types.ScreenWifiStatus},
		},
		Sensors: types.SensorConfig{PollIntervalS: 5},
	}
	h := &harness{
		renderer: &fakeRenderer{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.loop = New(Options{
		Config:    cfg,
		Transport: types.TransportExternalSerialModule,
		Manager:   netmgr.New(&instantTransport{}, cfg.Wifi),
		Sync:      timesync.New(&fixedTimeSource{epoch: 1_767_225_600}, cfg.Time),
		Buttons:   input.New(cfg.Buttons),
		ReadLevels: func() [types.ButtonCount]bool {
			return h.levels
		},
		Screen: screen.New(cfg.Display),
		Sensors: sensors.NewPoller(
			[]sensors.Source{&fakeSensor{reading: sensors.Reading{DeciCelsius: 221, HasTemp: true}}},
			cfg.Sensors),
		Renderer: h.renderer,
		Bus:      bus.NewBus(8),
		ProbeFunc: func() probe.Report {
			return probe.Report{Found: map[string]bool{"aht20": true}}
		},
	})
	return h
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.loop.Tick(h.now)
		h.now = h.now.Add(20 * time.Millisecond)
	}
}

func (h *harness) lastFrame(t *testing.T) types.ScreenFrame {
	t.Helper()
	if len(h.renderer.frames) == 0 {
		t.Fatal("nothing drawn")
	}
	return h.renderer.frames[len(h.renderer.frames)-1]
}

// ---- tests ----

func TestSmokeConnectSyncAndRender(t *testing.T) {
	h := newHarness(t)
	h.tick(20)

	if got := h.loop.opts.Manager.Status().Phase; got != types.LinkConnected {
		t.Fatalf("link phase = %v", got)
	}
	snap := h.loop.opts.Sync.Current(h.now)
	if snap.Source != types.TimeNetworkSynced {
		t.Fatalf("time source = %v", snap.Source)
	}
	frame := h.lastFrame(t)
	if frame.Screen != types.ScreenOverview {
		t.Fatalf("screen = %v", frame.Screen)
	}
	if frame.Fields["link"] != "connected" {
		t.Errorf("link field = %q", frame.Fields["link"])
	}
	if frame.Fields["temp"] != "22.1C" {
		t.Errorf("temp field = %q", frame.Fields["temp"])
	}
}

func TestButtonsNavigate(t *testing.T) {
	h := newHarness(t)
	h.tick(5)

	h.levels[int(types.ButtonDown)] = true
	h.tick(3)
	h.levels[int(types.ButtonDown)] = false
	h.tick(3)

	if h.lastFrame(t).Screen != types.ScreenTemperature {
		t.Fatalf("screen = %v", h.lastFrame(t).Screen)
	}
	if h.loop.opts.Screen.Current() != types.ScreenTemperature {
		t.Fatalf("machine on %v", h.loop.opts.Screen.Current())
	}
}

func TestDrawOnlyOnChange(t *testing.T) {
	h := newHarness(t)
	h.tick(10)
	drawn := len(h.renderer.frames)
	// Nothing changes between these ticks, so nothing is redrawn.
	h.tick(5)
	if len(h.renderer.frames) != drawn {
		t.Fatalf("redrew an unchanged frame: %d -> %d", drawn, len(h.renderer.frames))
	}
}

func TestConsoleCommands(t *testing.T) {
	h := newHarness(t)
	h.tick(60) // past the first status publish

	var out strings.Builder
	c := console.New(&out)
	h.loop.RegisterConsole(c)

	c.Exec("wifi")
	if !strings.Contains(out.String(), "connected Home -50 dBm") {
		t.Fatalf("wifi output = %q", out.String())
	}

	out.Reset()
	c.Exec("screens")
	if !strings.Contains(out.String(), "overview") || !strings.Contains(out.String(), "wifi") {
		t.Fatalf("screens output = %q", out.String())
	}

	out.Reset()
	c.Exec("time set 1800000000")
	if !strings.Contains(out.String(), "clock set") {
		t.Fatalf("time set output = %q", out.String())
	}
	h.tick(1) // op applies at the next tick
	if snap := h.loop.opts.Sync.Current(h.now); snap.Source != types.TimeManuallySet {
		t.Fatalf("source = %v", snap.Source)
	}

	out.Reset()
	c.Exec("time set nonsense")
	if !strings.Contains(out.String(), "invalid_params") {
		t.Fatalf("bad epoch output = %q", out.String())
	}
}

func TestConsoleProbeRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.tick(2)

	var out strings.Builder
	c := console.New(&out)
	h.loop.RegisterConsole(c)

	done := make(chan struct{})
	go func() {
		c.Exec("probe")
		close(done)
	}()
	// The probe request is served by the tick loop.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-done:
			if !strings.Contains(out.String(), "aht20: present") {
				t.Fatalf("probe output = %q", out.String())
			}
			return
		case <-deadline:
			t.Fatal("probe never completed")
		default:
			h.tick(1)
		}
	}
}

func TestForceReconnectFromConsole(t *testing.T) {
	h := newHarness(t)
	h.tick(10)
	if h.loop.opts.Manager.Status().Phase != types.LinkConnected {
		t.Fatal("precondition: not connected")
	}

	var out strings.Builder
	c := console.New(&out)
	h.loop.RegisterConsole(c)
	c.Exec("reconnect")
	h.tick(1)
	// A fresh cycle begins immediately and completes within a few ticks.
	h.tick(10)
	if h.loop.opts.Manager.Status().Phase != types.LinkConnected {
		t.Fatalf("phase = %v", h.loop.opts.Manager.Status().Phase)
	}
}
