package types

import "weatherunit-go/errcode"

// ---- Wireless transport capability ----

// TransportKind is decided once at boot by the hardware detector and is
// immutable afterwards.
type TransportKind uint8

const (
	TransportNone TransportKind = iota
	TransportNativeRadio
	TransportExternalSerialModule
)

func (k TransportKind) String() string {
	switch k {
	case TransportNativeRadio:
		return "native_radio"
	case TransportExternalSerialModule:
		return "serial_module"
	default:
		return "none"
	}
}

// ---- Network profiles ----

// NetworkProfile is one configured candidate network. Lower priority is
// tried first; ties break by list order. Immutable once loaded.
type NetworkProfile struct {
	SSID     string
	Password string
	Priority int
}

// ---- Link state ----

type LinkPhase uint8

const (
	LinkDisconnected LinkPhase = iota
	LinkConnecting
	LinkConnected
	LinkFailed
)

func (p LinkPhase) String() string {
	switch p {
	case LinkConnecting:
		return "connecting"
	case LinkConnected:
		return "connected"
	case LinkFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

// LinkState is owned exclusively by the connectivity manager; everything
// else receives value copies.
type LinkState struct {
	Phase     LinkPhase
	Profile   NetworkProfile // valid unless Disconnected
	Attempt   int            // valid while Connecting
	SignalDBm int            // valid while Connected
	IP        string         // valid while Connected, may be empty
	Reason    errcode.Code   // valid while Failed
}

// ---- Time ----

type TimeSource uint8

const (
	TimeUnset TimeSource = iota
	TimeNetworkSynced
	TimeManuallySet
)

func (s TimeSource) String() string {
	switch s {
	case TimeNetworkSynced:
		return "network"
	case TimeManuallySet:
		return "manual"
	default:
		return "unset"
	}
}

// TimeSnapshot is mutated only by the time synchronizer; readers get copies.
type TimeSnapshot struct {
	EpochSeconds  int64
	Source        TimeSource
	SinceLastSync int64 // seconds since the last successful sync or manual set
}

// ---- Buttons ----

// ButtonEvent is one completed debounced press. Transient, consumed once.
type ButtonEvent uint8

const (
	ButtonUp ButtonEvent = iota
	ButtonDown
	ButtonSelect
	ButtonBack
	ButtonCount // number of physical lines
)

func (e ButtonEvent) String() string {
	switch e {
	case ButtonUp:
		return "up"
	case ButtonDown:
		return "down"
	case ButtonSelect:
		return "select"
	case ButtonBack:
		return "back"
	default:
		return "?"
	}
}

// ---- Screens ----

type Screen uint8

const (
	ScreenOverview Screen = iota
	ScreenTemperature
	ScreenHumidity
	ScreenPressure
	ScreenClock
	ScreenWifiStatus
	ScreenRadioStatus
	ScreenDiagnostics
)

func (s Screen) String() string {
	switch s {
	case ScreenOverview:
		return "overview"
	case ScreenTemperature:
		return "temperature"
	case ScreenHumidity:
		return "humidity"
	case ScreenPressure:
		return "pressure"
	case ScreenClock:
		return "clock"
	case ScreenWifiStatus:
		return "wifi"
	case ScreenRadioStatus:
		return "radio"
	case ScreenDiagnostics:
		return "diagnostics"
	default:
		return "?"
	}
}

// ScreenByName maps a configuration name to a Screen.
func ScreenByName(name string) (Screen, bool) {
	for s := ScreenOverview; s <= ScreenDiagnostics; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return ScreenOverview, false
}

// ScreenFrame is the display state machine's output, regenerated every
// update tick and handed to the renderer. Read-only, never persisted.
type ScreenFrame struct {
	Screen Screen
	Fields map[string]string
}

// ---- Snapshots from external collaborators ----

// SensorSnapshot holds the latest environmental readings in integer deci
// units (no floats on the hot path).
type SensorSnapshot struct {
	DeciCelsius int32
	DeciRH      int32
	PressureDPa int32 // deci-pascal
}

// ControllerSnapshot mirrors the FM transmitter collaborator's state.
type ControllerSnapshot struct {
	FreqKHz int32
	Muted   bool
	PowerOn bool
}
