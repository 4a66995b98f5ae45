package detect

import (
	"weatherunit-go/services/probe"
	"weatherunit-go/types"
)

// -----------------------------------------------------------------------------
// Wireless hardware detection
//
// Runs exactly once at boot. The result is immutable for the process
// lifetime: a failed detection is a capability flag ("wireless
// unavailable"), never a boot error, and is never retried.
// -----------------------------------------------------------------------------

// Board is the static board metadata the detector consults. Native radio
// silicon sits on the board itself, so its presence comes from board
// identity (or a platform-contributed probe entry), not from an I2C scan.
type Board struct {
	Name        string
	NativeRadio bool
}

// Handshake attempts the external serial module's enable/acknowledge
// exchange. Implementations must bound their own timeout.
type Handshake func() bool

// Detect decides which wireless transport is available:
// native radio silicon first, then a responding serial module, else none.
func Detect(rep probe.Report, board Board, hs Handshake) types.TransportKind {
	if board.NativeRadio || rep.Present("radio") {
		return types.TransportNativeRadio
	}
	if hs != nil && hs() {
		return types.TransportExternalSerialModule
	}
	return types.TransportNone
}
