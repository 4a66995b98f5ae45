package screen

import (
	"time"

	"weatherunit-go/types"
)

// -----------------------------------------------------------------------------
// Display state machine
//
// Tracks which screen is shown and turns the unit's current state into a
// renderable frame. Pure: no hardware access, no clock reads. The main
// loop feeds it button events and an Inputs snapshot each update tick.
// -----------------------------------------------------------------------------

// Inputs is everything a frame can draw from, gathered by the caller.
// Screens show the truth: link phase and time source come straight from
// their owners, never cached or inferred here.
type Inputs struct {
	Sensors        types.SensorSnapshot
	SensorAge      time.Duration // since the last good reading
	HaveSensors    bool          // at least one good reading ever
	Controller     types.ControllerSnapshot
	HaveController bool
	Link           types.LinkState
	Transport      types.TransportKind
	Time           types.TimeSnapshot
	Uptime         time.Duration
}

type Machine struct {
	cycle      []types.Screen
	pos        int
	staleAfter time.Duration
}

// New builds the machine over the configured screen cycle. The cycle is
// validated at config load: non-empty, known names, contains overview.
func New(cfg types.DisplayConfig) *Machine {
	m := &Machine{
		cycle:      cfg.Cycle,
		staleAfter: time.Duration(cfg.StaleAfterS) * time.Second,
	}
	m.pos = m.indexOf(types.ScreenOverview)
	return m
}

func (m *Machine) Current() types.Screen { return m.cycle[m.pos] }

// Handle applies one button press and reports whether the screen changed.
// Up and Down step through the cycle with wrap-around. Select enters the
// first detail screen from the overview and is a no-op elsewhere. Back
// returns to the overview from anywhere.
func (m *Machine) Handle(ev types.ButtonEvent) bool {
	prev := m.pos
	switch ev {
	case types.ButtonUp:
		m.pos = (m.pos - 1 + len(m.cycle)) % len(m.cycle)
	case types.ButtonDown:
		m.pos = (m.pos + 1) % len(m.cycle)
	case types.ButtonSelect:
		if m.Current() == types.ScreenOverview {
			m.pos = m.firstDetail()
		}
	case types.ButtonBack:
		m.pos = m.indexOf(types.ScreenOverview)
	}
	return m.pos != prev
}

func (m *Machine) indexOf(s types.Screen) int {
	for i, c := range m.cycle {
		if c == s {
			return i
		}
	}
	return 0
}

func (m *Machine) firstDetail() int {
	for i, c := range m.cycle {
		if c != types.ScreenOverview {
			return i
		}
	}
	return m.pos
}

// Frame renders the current screen's fields from the inputs.
func (m *Machine) Frame(in Inputs) types.ScreenFrame {
	f := types.ScreenFrame{
		Screen: m.Current(),
		Fields: map[string]string{},
	}
	switch f.Screen {
	case types.ScreenOverview:
		f.Fields["time"] = clockHM(in.Time)
		f.Fields["temp"] = m.sensorField(in, deci(in.Sensors.DeciCelsius)+"C")
		f.Fields["rh"] = m.sensorField(in, deci(in.Sensors.DeciRH)+"%")
		f.Fields["link"] = in.Link.Phase.String()
	case types.ScreenTemperature:
		f.Fields["value"] = m.sensorField(in, deci(in.Sensors.DeciCelsius)+" C")
	case types.ScreenHumidity:
		f.Fields["value"] = m.sensorField(in, deci(in.Sensors.DeciRH)+" %")
	case types.ScreenPressure:
		// deci-pascal to tenths of hPa
		f.Fields["value"] = m.sensorField(in, deci(in.Sensors.PressureDPa/100)+" hPa")
	case types.ScreenClock:
		fillClock(f.Fields, in.Time)
	case types.ScreenWifiStatus:
		fillWifi(f.Fields, in.Link, in.Transport)
	case types.ScreenRadioStatus:
		fillRadio(f.Fields, in.Controller, in.HaveController)
	case types.ScreenDiagnostics:
		fillDiagnostics(f.Fields, in)
	}
	return f
}

// sensorField appends the stale marker when the backing reading is older
// than the configured threshold, or shows a placeholder when there has
// never been one.
func (m *Machine) sensorField(in Inputs, value string) string {
	if !in.HaveSensors {
		return "--"
	}
	if in.SensorAge > m.staleAfter {
		return value + "*"
	}
	return value
}
