package screen

import (
	"testing"
	"time"

	"weatherunit-go/errcode"
	"weatherunit-go/types"
)

func fullCycle() types.DisplayConfig {
	return types.DisplayConfig{
		StaleAfterS: 30,
		Cycle: []types.Screen{
			types.ScreenOverview,
			types.ScreenTemperature,
			types.ScreenHumidity,
			types.ScreenPressure,
			types.ScreenClock,
			types.ScreenWifiStatus,
			types.ScreenRadioStatus,
			types.ScreenDiagnostics,
		},
	}
}

func TestStartsOnOverview(t *testing.T) {
	m := New(fullCycle())
	if m.Current() != types.ScreenOverview {
		t.Fatalf("starts on %v", m.Current())
	}
}

func TestDownUpWrap(t *testing.T) {
	m := New(fullCycle())
	n := len(fullCycle().Cycle)
	for i := 0; i < n; i++ {
		m.Handle(types.ButtonDown)
	}
	if m.Current() != types.ScreenOverview {
		t.Errorf("full down cycle ends on %v", m.Current())
	}
	m.Handle(types.ButtonUp)
	if m.Current() != types.ScreenDiagnostics {
		t.Errorf("up from overview wraps to %v", m.Current())
	}
	m.Handle(types.ButtonDown)
	if m.Current() != types.ScreenOverview {
		t.Errorf("down undoes up, got %v", m.Current())
	}
}

func TestSelectEntersFirstDetail(t *testing.T) {
	m := New(fullCycle())
	if !m.Handle(types.ButtonSelect) {
		t.Fatal("select on overview did not change screen")
	}
	if m.Current() != types.ScreenTemperature {
		t.Fatalf("got %v", m.Current())
	}
	// Elsewhere select is a no-op.
	if m.Handle(types.ButtonSelect) {
		t.Error("select on a detail screen changed screen")
	}
}

func TestBackReturnsToOverview(t *testing.T) {
	m := New(fullCycle())
	m.Handle(types.ButtonDown)
	m.Handle(types.ButtonDown)
	m.Handle(types.ButtonDown)
	if !m.Handle(types.ButtonBack) {
		t.Fatal("back did not change screen")
	}
	if m.Current() != types.ScreenOverview {
		t.Fatalf("got %v", m.Current())
	}
	if m.Handle(types.ButtonBack) {
		t.Error("back on overview changed screen")
	}
}

func goodInputs() Inputs {
	return Inputs{
		Sensors:     types.SensorSnapshot{DeciCelsius: 234, DeciRH: 412, PressureDPa: 1013200},
		SensorAge:   2 * time.Second,
		HaveSensors: true,
		Link:        types.LinkState{Phase: types.LinkConnected, Profile: types.NetworkProfile{SSID: "Home"}, SignalDBm: -52, IP: "192.168.4.2"},
		Transport:   types.TransportExternalSerialModule,
		Time:        types.TimeSnapshot{EpochSeconds: 1_767_225_600, Source: types.TimeNetworkSynced},
		Uptime:      time.Hour + 5*time.Minute + 9*time.Second,
	}
}

func frameFor(t *testing.T, s types.Screen, in Inputs) types.ScreenFrame {
	t.Helper()
	cfg := fullCycle()
	m := New(cfg)
	for m.Current() != s {
		m.Handle(types.ButtonDown)
	}
	return m.Frame(in)
}

func TestSensorFields(t *testing.T) {
	cases := []struct {
		screen types.Screen
		want   string
	}{
		{types.ScreenTemperature, "23.4 C"},
		{types.ScreenHumidity, "41.2 %"},
		{types.ScreenPressure, "1013.2 hPa"},
	}
	for _, tc := range cases {
		f := frameFor(t, tc.screen, goodInputs())
		if f.Fields["value"] != tc.want {
			t.Errorf("%v: value = %q, want %q", tc.screen, f.Fields["value"], tc.want)
		}
	}
}

func TestStaleMarker(t *testing.T) {
	in := goodInputs()
	in.SensorAge = 31 * time.Second
	f := frameFor(t, types.ScreenTemperature, in)
	if f.Fields["value"] != "23.4 C*" {
		t.Errorf("value = %q", f.Fields["value"])
	}

	in.HaveSensors = false
	f = frameFor(t, types.ScreenTemperature, in)
	if f.Fields["value"] != "--" {
		t.Errorf("value = %q", f.Fields["value"])
	}
}

func TestOverviewShowsTrueLinkAndTime(t *testing.T) {
	in := goodInputs()
	in.Link = types.LinkState{Phase: types.LinkConnecting, Profile: types.NetworkProfile{SSID: "Home"}, Attempt: 2}
	in.Time = types.TimeSnapshot{Source: types.TimeUnset}
	f := frameFor(t, types.ScreenOverview, in)
	if f.Fields["link"] != "connecting" {
		t.Errorf("link = %q", f.Fields["link"])
	}
	if f.Fields["time"] != "--:--" {
		t.Errorf("time = %q", f.Fields["time"])
	}
}

func TestWifiStatusFields(t *testing.T) {
	f := frameFor(t, types.ScreenWifiStatus, goodInputs())
	if f.Fields["phase"] != "connected" || f.Fields["ssid"] != "Home" {
		t.Errorf("fields = %v", f.Fields)
	}
	if f.Fields["rssi"] != "-52 dBm" || f.Fields["ip"] != "192.168.4.2" {
		t.Errorf("fields = %v", f.Fields)
	}

	in := goodInputs()
	in.Link = types.LinkState{Phase: types.LinkFailed, Reason: errcode.AuthFailed}
	f = frameFor(t, types.ScreenWifiStatus, in)
	if f.Fields["reason"] != string(errcode.AuthFailed) {
		t.Errorf("reason = %q", f.Fields["reason"])
	}
}

func TestRadioStatusFields(t *testing.T) {
	in := goodInputs()
	in.HaveController = true
	in.Controller = types.ControllerSnapshot{FreqKHz: 98500, Muted: false, PowerOn: true}
	f := frameFor(t, types.ScreenRadioStatus, in)
	if f.Fields["freq"] != "98.5 MHz" || f.Fields["power"] != "yes" || f.Fields["muted"] != "no" {
		t.Errorf("fields = %v", f.Fields)
	}

	in.HaveController = false
	f = frameFor(t, types.ScreenRadioStatus, in)
	if f.Fields["status"] != "not fitted" {
		t.Errorf("fields = %v", f.Fields)
	}
}

func TestClockFields(t *testing.T) {
	in := goodInputs()
	in.Time = types.TimeSnapshot{EpochSeconds: 1_767_225_600, Source: types.TimeNetworkSynced, SinceLastSync: 12}
	f := frameFor(t, types.ScreenClock, in)
	// 1767225600 = 2026-01-01 00:00:00 UTC
	if f.Fields["time"] != "00:00:00" || f.Fields["date"] != "2026-01-01" {
		t.Errorf("fields = %v", f.Fields)
	}
	if f.Fields["source"] != "network" || f.Fields["synced"] != "12s ago" {
		t.Errorf("fields = %v", f.Fields)
	}
}

func TestDiagnosticsFields(t *testing.T) {
	f := frameFor(t, types.ScreenDiagnostics, goodInputs())
	if f.Fields["uptime"] != "1h05m09s" {
		t.Errorf("uptime = %q", f.Fields["uptime"])
	}
	if f.Fields["transport"] != "serial_module" {
		t.Errorf("transport = %q", f.Fields["transport"])
	}
}

func TestDeci(t *testing.T) {
	cases := []struct {
		in   int32
		want string
	}{
		{234, "23.4"}, {0, "0.0"}, {-5, "-0.5"}, {-234, "-23.4"}, {1000, "100.0"},
	}
	for _, tc := range cases {
		if got := deci(tc.in); got != tc.want {
			t.Errorf("deci(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
