package platform

import (
	"io"

	"tinygo.org/x/drivers"

	"weatherunit-go/services/netmgr"
	"weatherunit-go/services/probe"
	"weatherunit-go/services/system"
	"weatherunit-go/services/timesync"
	"weatherunit-go/types"
)

// BoardName selects the embedded configuration. Overridden at link time
// for other boards: -ldflags "-X weatherunit-go/platform.BoardName=pico_w".
var BoardName = "pico"

// Board is everything the composition root needs from the hardware.
// Setup (per build) fills in what the board actually has; absent
// capabilities stay nil and the core treats them as not fitted.
type Board struct {
	Name        string
	NativeRadio bool

	Buses        map[string]drivers.I2C
	ProbeTargets []probe.Target

	Renderer   system.Renderer
	ReadLevels func() [types.ButtonCount]bool

	ConsoleIn  io.Reader
	ConsoleOut io.Writer

	// Wireless, any of which may be nil.
	UART    netmgr.Port                   // external serial module port
	Netlink netmgr.Connector              // native radio stack
	DialUDP func() (timesync.Conn, error) // UDP dial for SNTP on the native path
}
